package media_storage

import "context"

// ImageStorage persists uploaded post images and returns the stored path
// relative to the media root, e.g. "posts/2f1c...e9.gif".
type ImageStorage interface {
	Save(ctx context.Context, filename string, data []byte) (string, error)
	Delete(ctx context.Context, path string) error
}
