package media

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"go.uber.org/zap"
)

func TestPublicIDFromURL(t *testing.T) {
	cases := []struct {
		url  string
		want string
		err  bool
	}{
		{url: "https://res.cloudinary.com/demo/image/upload/v1699/listings/abc.jpg", want: "listings/abc"},
		{url: "https://res.cloudinary.com/demo/image/upload/abc.png", want: "abc"},
		{url: "https://res.cloudinary.com/demo/image/upload/v12/a/b/c.tar.gz?x=1", want: "a/b/c.tar"},
		{url: "https://res.cloudinary.com/demo/image/upload/v5/noext", want: "noext"},
		{url: "https://example.com/images/abc.jpg", err: true},
		{url: "https://res.cloudinary.com/demo/image/upload/", err: true},
	}
	for _, tc := range cases {
		got, err := PublicIDFromURL(tc.url)
		if tc.err {
			if err == nil {
				t.Fatalf("%s: expected error, got %q", tc.url, got)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s: %v", tc.url, err)
		}
		if got != tc.want {
			t.Fatalf("%s: got %q want %q", tc.url, got, tc.want)
		}
	}
}

type fakeUploadAPI struct {
	uploadParams  uploader.UploadParams
	destroyed     []string
	uploadResult  *uploader.UploadResult
	destroyResult *uploader.DestroyResult
	err           error
}

func (f *fakeUploadAPI) Upload(_ context.Context, _ interface{}, params uploader.UploadParams) (*uploader.UploadResult, error) {
	f.uploadParams = params
	if f.err != nil {
		return nil, f.err
	}
	return f.uploadResult, nil
}

func (f *fakeUploadAPI) Destroy(_ context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error) {
	f.destroyed = append(f.destroyed, params.PublicID)
	if f.err != nil {
		return nil, f.err
	}
	return f.destroyResult, nil
}

func TestCloudinaryUpload(t *testing.T) {
	fake := &fakeUploadAPI{uploadResult: &uploader.UploadResult{SecureURL: "https://res.cloudinary.com/demo/image/upload/v1/listings/x.jpg"}}
	store := &Cloudinary{api: fake, folder: "listings", logger: zap.NewNop()}

	url, err := store.Upload(context.Background(), "x.jpg", strings.NewReader("img"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if url != fake.uploadResult.SecureURL {
		t.Fatalf("unexpected url %s", url)
	}
	if fake.uploadParams.Folder != "listings" {
		t.Fatalf("expected folder to be forwarded, got %q", fake.uploadParams.Folder)
	}

	fake.uploadResult = &uploader.UploadResult{Error: api.ErrorResp{Message: "bad file"}}
	if _, err := store.Upload(context.Background(), "x.jpg", strings.NewReader("img")); err == nil {
		t.Fatal("expected provider error")
	}
}

func TestCloudinaryDelete(t *testing.T) {
	fake := &fakeUploadAPI{destroyResult: &uploader.DestroyResult{Result: "ok"}}
	store := &Cloudinary{api: fake, folder: "listings", logger: zap.NewNop()}

	if err := store.Delete(context.Background(), "https://res.cloudinary.com/demo/image/upload/v3/listings/abc.webp"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(fake.destroyed) != 1 || fake.destroyed[0] != "listings/abc" {
		t.Fatalf("unexpected destroy calls %v", fake.destroyed)
	}

	if err := store.Delete(context.Background(), "https://elsewhere.test/a.jpg"); !errors.Is(err, ErrNotProviderURL) {
		t.Fatalf("expected ErrNotProviderURL, got %v", err)
	}

	fake.destroyResult = &uploader.DestroyResult{Result: "not found"}
	if err := store.Delete(context.Background(), "https://res.cloudinary.com/demo/image/upload/gone.jpg"); err != nil {
		t.Fatalf("missing asset should not fail: %v", err)
	}
}

func TestDisabledStore(t *testing.T) {
	var store Store = Disabled{}
	if _, err := store.Upload(context.Background(), "a", strings.NewReader("")); !errors.Is(err, ErrDisabled) {
		t.Fatalf("expected ErrDisabled, got %v", err)
	}
	if err := store.Delete(context.Background(), "whatever"); err != nil {
		t.Fatalf("delete: %v", err)
	}
}
