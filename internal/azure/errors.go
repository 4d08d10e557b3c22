package azure

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"

	"netbackup/internal/nb"
)

// ClassifyError marks rejected credentials and forbidden responses with
// nb.ErrAuthorization. Other errors are returned unchanged.
func ClassifyError(err error) error {
	if err == nil || errors.Is(err, nb.ErrAuthorization) {
		return err
	}

	var authErr *azidentity.AuthenticationFailedError
	if errors.As(err, &authErr) {
		return fmt.Errorf("%w: %w", nb.ErrAuthorization, err)
	}

	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) {
		switch respErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %w", nb.ErrAuthorization, err)
		}
	}
	return err
}
