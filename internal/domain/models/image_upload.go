package model

type ImageUpload struct {
	Filename string
	Data     []byte
}
