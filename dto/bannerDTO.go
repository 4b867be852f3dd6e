package dto

import (
	"bytes"
	"encoding/json"
	"math"
	"storefront/model"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

type BannerForm struct {
	Title     string    `json:"title" binding:"notblank" message:"Title is required"`
	Subtitle  string    `json:"subtitle"`
	ImageURL  string    `json:"imageUrl" binding:"required,url" message:"Must be a valid URL"`
	CtaLabel  string    `json:"ctaLabel"`
	CtaLink   string    `json:"ctaLink"`
	IsActive  bool      `json:"isActive"`
	SortOrder SortOrder `json:"sortOrder" message:"Sort order must be a whole number"`

	sortOrderInvalid bool
}

// UnmarshalJSON decodes the whole form even when sortOrder is malformed; the bad
// value is reported by validation alongside the other fields.
func (f *BannerForm) UnmarshalJSON(data []byte) error {
	type plain BannerForm
	var body struct {
		plain
		SortOrder json.RawMessage `json:"sortOrder"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return err
	}
	*f = BannerForm(body.plain)
	f.SortOrder, f.sortOrderInvalid = 0, false
	if len(body.SortOrder) > 0 {
		if err := f.SortOrder.UnmarshalJSON(body.SortOrder); err != nil {
			f.sortOrderInvalid = true
		}
	}
	return nil
}

func validateBannerForm(sl validator.StructLevel) {
	f := sl.Current().Interface().(BannerForm)
	if f.sortOrderInvalid {
		sl.ReportError(f.SortOrder, "sortOrder", "SortOrder", "wholenumber", "")
	}
}

func (f BannerForm) Fields() model.BannerFields {
	return model.BannerFields{
		Title:     strings.TrimSpace(f.Title),
		Subtitle:  strings.TrimSpace(f.Subtitle),
		ImageURL:  strings.TrimSpace(f.ImageURL),
		CtaLabel:  strings.TrimSpace(f.CtaLabel),
		CtaLink:   strings.TrimSpace(f.CtaLink),
		IsActive:  f.IsActive,
		SortOrder: int(f.SortOrder),
	}
}

// NewBannerForm returns the edit dialog defaults for b. A nil banner yields the blank create form.
func NewBannerForm(b *model.Banner) BannerForm {
	if b == nil {
		return BannerForm{IsActive: true}
	}
	return BannerForm{
		Title:     b.Title,
		Subtitle:  b.Subtitle,
		ImageURL:  b.ImageURL,
		CtaLabel:  b.CtaLabel,
		CtaLink:   b.CtaLink,
		IsActive:  b.IsActive,
		SortOrder: SortOrder(b.SortOrder),
	}
}

// SortOrder accepts JSON numbers or numeric strings and coerces them to an integer.
// null, "" and an absent value are 0.
type SortOrder int

func (s *SortOrder) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = 0
		return nil
	}

	var raw string
	if data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return sortOrderError()
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			*s = 0
			return nil
		}
	} else {
		raw = string(data)
	}

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return sortOrderError()
	}
	if f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return sortOrderError()
	}
	*s = SortOrder(int(f))
	return nil
}

func sortOrderError() error {
	return &FieldError{Field: "sortOrder", Message: "Sort order must be a whole number"}
}

// BannerListResponse is one rendered state of the admin banner table.
type BannerListResponse struct {
	Banners []model.Banner `json:"banners"`
	Empty   bool           `json:"empty"`
}

func NewBannerListResponse(banners []model.Banner) BannerListResponse {
	if banners == nil {
		banners = []model.Banner{}
	}
	return BannerListResponse{Banners: banners, Empty: len(banners) == 0}
}

// BannerPending is sent before the first snapshot arrives.
type BannerPending struct {
	Placeholders int `json:"placeholders"`
}
