package domain

import (
	"context"
	"errors"
)

type Service interface {
	// GrantForOrder creates download permissions for every downloadable
	// product on the order. Existing (user, product) grants are kept.
	GrantForOrder(ctx context.Context, orderID int64) error

	// RecordDownload decrements the remaining download count. At zero the
	// count is left untouched and only the timestamp is updated.
	RecordDownload(ctx context.Context, userID, productID int64) (DownloadPermission, error)

	ListByUser(ctx context.Context, userID int64) ([]DownloadPermission, error)
}

var (
	ErrPermissionNotFound = errors.New("permission_not_found")
	ErrInvalidPermission  = errors.New("invalid_permission")
)
