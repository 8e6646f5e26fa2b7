package api

import (
	"github.com/infrahq/unpublished/uid"
)

type Bundle struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

type CreateBundleRequest struct {
	ID    string `json:"id" binding:"required,max=32,bundleid"`
	Label string `json:"label" binding:"required"`
}

type Content struct {
	ID        uid.ID `json:"id"`
	Bundle    string `json:"bundle"`
	Title     string `json:"title"`
	Published bool   `json:"published"`
	Owner     uid.ID `json:"owner"`
	Created   Time   `json:"created"`
}

type CreateContentRequest struct {
	Bundle    string `json:"bundle" binding:"required"`
	Title     string `json:"title" binding:"required"`
	Published bool   `json:"published"`
}
