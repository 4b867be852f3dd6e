package services

import (
	"context"
	"sort"
	"storefront/model"
)

// BannerStore persists homepage banners. List and Watch yield banners in display order.
type BannerStore interface {
	List(ctx context.Context) ([]model.Banner, error)
	Get(ctx context.Context, id string) (*model.Banner, error)
	Create(ctx context.Context, fields model.BannerFields) (*model.Banner, error)
	Update(ctx context.Context, id string, fields model.BannerFields) (*model.Banner, error)
	Delete(ctx context.Context, id string) error
	// Watch calls fn with the full collection after every change until ctx is done.
	// Delivery is latest-wins: a slow fn may skip intermediate snapshots.
	Watch(ctx context.Context, fn func([]model.Banner)) error
}

// SortBanners orders by sortOrder ascending, newest first within equal sortOrder.
func SortBanners(banners []model.Banner) {
	sort.SliceStable(banners, func(i, j int) bool {
		if banners[i].SortOrder != banners[j].SortOrder {
			return banners[i].SortOrder < banners[j].SortOrder
		}
		return banners[i].CreatedAt.After(banners[j].CreatedAt)
	})
}

// ActiveBanners keeps the banners shown on the storefront, preserving order.
func ActiveBanners(banners []model.Banner) []model.Banner {
	active := make([]model.Banner, 0, len(banners))
	for _, b := range banners {
		if b.IsActive {
			active = append(active, b)
		}
	}
	return active
}
