package nb_test

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"testing"

	"netbackup/internal/nb"
	"netbackup/internal/testutil"
)

func zipEntries(t *testing.T, data []byte) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("zip.NewReader() error = %v", err)
	}
	entries := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("opening %s: %v", f.Name, err)
		}
		body, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("reading %s: %v", f.Name, err)
		}
		entries[f.Name] = string(body)
	}
	return entries
}

func TestService_Archive(t *testing.T) {
	ctx := context.Background()

	t.Run("entries are relative to the timestamp directory", func(t *testing.T) {
		f := newFixture(t)
		rd, _ := f.dir.ForSubscription("sub-1")
		root, _, err := f.svc.WriteBackup(ctx, rd, nb.Subscription{ID: "sub-1", DisplayName: "Production"}, testutil.FixedTimestamp)
		if err != nil {
			t.Fatalf("WriteBackup() error = %v", err)
		}

		data, err := f.svc.Archive(root)
		if err != nil {
			t.Fatalf("Archive() error = %v", err)
		}

		entries := zipEntries(t, data)
		want := map[string]string{
			"Production/rg-net/network/vnet-1_vnet.json":   "{\n  \"name\": \"vnet-1\"\n}",
			"Production/rg-net/network/web_nsg_nsg.json": "{\n  \"name\": \"web/nsg\"\n}",
		}
		if len(entries) != len(want) {
			t.Fatalf("entries = %v, want %d entries", entries, len(want))
		}
		for name, body := range want {
			if entries[name] != body {
				t.Errorf("entry %s = %q, want %q", name, entries[name], body)
			}
		}
	})

	t.Run("only json files are included", func(t *testing.T) {
		f := newFixture(t)
		st := f.staging
		if err := st.MkdirAll("ts/Sub/rg/network"); err != nil {
			t.Fatal(err)
		}
		st.WriteFile("ts/Sub/rg/network/a_vnet.json", []byte("{}"))
		st.WriteFile("ts/Sub/rg/network/notes.txt", []byte("skip"))
		st.WriteFile("ts/Sub/readme", []byte("skip"))

		data, err := f.svc.Archive("ts/Sub")
		if err != nil {
			t.Fatalf("Archive() error = %v", err)
		}
		entries := zipEntries(t, data)
		if len(entries) != 1 || entries["Sub/rg/network/a_vnet.json"] != "{}" {
			t.Errorf("entries = %v", entries)
		}
	})

	t.Run("tree without resources is a valid empty archive", func(t *testing.T) {
		f := newFixture(t)
		if err := f.staging.MkdirAll("ts/Empty/rg/network"); err != nil {
			t.Fatal(err)
		}

		data, err := f.svc.Archive("ts/Empty")
		if err != nil {
			t.Fatalf("Archive() error = %v", err)
		}
		if entries := zipEntries(t, data); len(entries) != 0 {
			t.Errorf("entries = %v, want none", entries)
		}
	})

	t.Run("staging tree is left in place", func(t *testing.T) {
		f := newFixture(t)
		f.staging.MkdirAll("ts/Sub")
		f.staging.WriteFile("ts/Sub/x_vnet.json", []byte("{}"))

		if _, err := f.svc.Archive("ts/Sub"); err != nil {
			t.Fatalf("Archive() error = %v", err)
		}
		if _, err := f.staging.ReadFile("ts/Sub/x_vnet.json"); err != nil {
			t.Errorf("source file removed: %v", err)
		}
	})

	t.Run("missing root fails", func(t *testing.T) {
		f := newFixture(t)
		if _, err := f.svc.Archive("ts/Missing"); err == nil {
			t.Error("Archive() expected error for missing root")
		}
	})
}
