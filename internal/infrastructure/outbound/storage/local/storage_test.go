package local_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yatube/internal/custom_errors"
	"yatube/internal/infrastructure/logger"
	"yatube/internal/infrastructure/outbound/storage/local"
)

var smallGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x02, 0x00,
	0x01, 0x00, 0x80, 0x00, 0x00, 0x00, 0x00, 0x00,
	0xFF, 0xFF, 0xFF, 0x21, 0xF9, 0x04, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x2C, 0x00, 0x00, 0x00, 0x00,
	0x02, 0x00, 0x01, 0x00, 0x00, 0x02, 0x02, 0x0C,
	0x0A, 0x00, 0x3B,
}

func TestImageStorage_Save(t *testing.T) {
	root := t.TempDir()
	storage := local.NewImageStorage(root, 1024, logger.New("test"))

	tests := []struct {
		name     string
		filename string
		data     []byte
		wantErr  error
	}{
		{name: "gif", filename: "small.gif", data: smallGIF},
		{name: "text is rejected", filename: "notes.gif", data: []byte("plain text"), wantErr: custom_errors.ErrInvalidImage},
		{name: "empty", filename: "empty.gif", data: nil, wantErr: custom_errors.ErrInvalidImage},
		{name: "too large", filename: "big.gif", data: append(append([]byte{}, smallGIF...), make([]byte, 2048)...), wantErr: custom_errors.ErrImageTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rel, err := storage.Save(context.Background(), tt.filename, tt.data)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err, custom_errors.ErrValidation)
				assert.Empty(t, rel)
				return
			}
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(rel, "posts/"))
			assert.True(t, strings.HasSuffix(rel, ".gif"))

			stored, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
			require.NoError(t, err)
			assert.Equal(t, tt.data, stored)
		})
	}
}

func TestImageStorage_Delete(t *testing.T) {
	root := t.TempDir()
	storage := local.NewImageStorage(root, 0, logger.New("test"))
	ctx := context.Background()

	rel, err := storage.Save(ctx, "small.gif", smallGIF)
	require.NoError(t, err)

	require.NoError(t, storage.Delete(ctx, rel))
	_, err = os.Stat(filepath.Join(root, filepath.FromSlash(rel)))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, storage.Delete(ctx, rel))
	assert.ErrorIs(t, storage.Delete(ctx, "../etc/passwd"), custom_errors.ErrInvalidInput)
}
