package compay

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/eddyjj92/compay-storefront/pkg/enums"
)

// Discount applied to a product or promoted through a banner.
type Discount struct {
	ID           int                `json:"id"`
	Name         string             `json:"name"`
	Slug         string             `json:"slug"`
	Description  string             `json:"description"`
	Type         enums.DiscountType `json:"type"`
	Value        decimal.Decimal    `json:"value"`
	ApplicableTo string             `json:"applicableTo"`
}

func (d *Discount) UnmarshalJSON(data []byte) error {
	var w struct {
		ID           int                `json:"id"`
		Name         string             `json:"name"`
		Slug         string             `json:"slug"`
		Description  string             `json:"description"`
		Type         enums.DiscountType `json:"type"`
		Value        decimal.Decimal    `json:"value"`
		ApplicableTo string             `json:"applicable_to"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.Type == "" {
		w.Type = enums.DiscountTypePercentage
	}
	*d = Discount{
		ID:           w.ID,
		Name:         w.Name,
		Slug:         w.Slug,
		Description:  w.Description,
		Type:         w.Type,
		Value:        w.Value,
		ApplicableTo: w.ApplicableTo,
	}
	return nil
}

// Category of the marketplace catalog. The department payload is passed
// through untyped; nothing in the storefront inspects it.
type Category struct {
	ID            int             `json:"id"`
	Name          string          `json:"name"`
	Slug          string          `json:"slug"`
	Description   *string         `json:"description"`
	Image         string          `json:"image"`
	ProductsCount int             `json:"products_count"`
	Department    json.RawMessage `json:"department,omitempty"`
}

// Product is the catalog item shape shared across listing, detail, and
// cart/favorites views.
type Product struct {
	ID              int                 `json:"id"`
	Name            string              `json:"name"`
	Slug            string              `json:"slug"`
	Code            string              `json:"code"`
	Description     *string             `json:"description"`
	Type            *string             `json:"type"`
	SalePrice       decimal.Decimal     `json:"salePrice"`
	Weight          float64             `json:"weight"`
	FreeShipping    bool                `json:"freeShipping"`
	Image           string              `json:"image"`
	Status          enums.ProductStatus `json:"status"`
	Recommended     bool                `json:"recommended"`
	Stock           *int                `json:"stock"`
	ActiveDiscounts []Discount          `json:"activeDiscounts"`
	Category        *Category           `json:"category,omitempty"`
}

func (p *Product) UnmarshalJSON(data []byte) error {
	var w struct {
		ID              int                 `json:"id"`
		Name            string              `json:"name"`
		Slug            string              `json:"slug"`
		Code            string              `json:"code"`
		Description     *string             `json:"description"`
		Type            *string             `json:"type"`
		SalePrice       decimal.Decimal     `json:"sale_price"`
		Weight          float64             `json:"weight"`
		FreeShipping    bool                `json:"free_shipping"`
		Image           string              `json:"image"`
		Status          enums.ProductStatus `json:"status"`
		Recommended     bool                `json:"recommended"`
		Stock           *int                `json:"stock"`
		ActiveDiscounts []Discount          `json:"active_discounts"`
		Category        *Category           `json:"category"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.Status == "" {
		// An absent status means the marketplace hid the product.
		w.Status = enums.ProductStatusDisabled
	}
	if w.ActiveDiscounts == nil {
		w.ActiveDiscounts = []Discount{}
	}
	*p = Product{
		ID:              w.ID,
		Name:            w.Name,
		Slug:            w.Slug,
		Code:            w.Code,
		Description:     w.Description,
		Type:            w.Type,
		SalePrice:       w.SalePrice,
		Weight:          w.Weight,
		FreeShipping:    w.FreeShipping,
		Image:           w.Image,
		Status:          w.Status,
		Recommended:     w.Recommended,
		Stock:           w.Stock,
		ActiveDiscounts: w.ActiveDiscounts,
		Category:        w.Category,
	}
	return nil
}

// HasDiscount reports whether any active discount applies.
func (p Product) HasDiscount() bool {
	return len(p.ActiveDiscounts) > 0
}

// DiscountedPrice applies the active discounts to the sale price, floored
// at zero. Percentage discounts compound in declaration order.
func (p Product) DiscountedPrice() decimal.Decimal {
	if !p.HasDiscount() {
		return p.SalePrice
	}
	price := p.SalePrice
	hundred := decimal.NewFromInt(100)
	for _, discount := range p.ActiveDiscounts {
		if discount.Type == enums.DiscountTypePercentage {
			price = price.Sub(price.Mul(discount.Value).Div(hundred))
		} else {
			price = price.Sub(discount.Value)
		}
	}
	if price.IsNegative() {
		return decimal.Zero
	}
	return price
}

// IsAvailable reports whether the product can be purchased. A nil stock
// means the marketplace did not report it and status alone decides.
func (p Product) IsAvailable() bool {
	return p.Status == enums.ProductStatusEnabled && (p.Stock == nil || *p.Stock > 0)
}

// DeliveryType offered by a municipality.
type DeliveryType struct {
	ID            int             `json:"id"`
	Name          string          `json:"name"`
	DeliveryTimes string          `json:"deliveryTimes"`
	Prefix        string          `json:"prefix"`
	Price         decimal.Decimal `json:"price"`
	IsDefault     bool            `json:"isDefault"`
}

func (d *DeliveryType) UnmarshalJSON(data []byte) error {
	var w struct {
		ID            int             `json:"id"`
		Name          string          `json:"name"`
		DeliveryTimes string          `json:"delivery_times"`
		Prefix        string          `json:"prefix"`
		Price         decimal.Decimal `json:"price"`
		IsDefault     bool            `json:"is_default"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*d = DeliveryType(w)
	return nil
}

// Municipality within a province.
type Municipality struct {
	ID              int            `json:"id"`
	Name            string         `json:"name"`
	DeliveryExpress bool           `json:"deliveryExpress"`
	ProvinceID      int            `json:"provinceId"`
	CostRingID      int            `json:"costRingId"`
	DeliveryTypes   []DeliveryType `json:"deliveryTypes"`
}

func (m *Municipality) UnmarshalJSON(data []byte) error {
	var w struct {
		ID              int            `json:"id"`
		Name            string         `json:"name"`
		DeliveryExpress bool           `json:"delivery_express"`
		ProvinceID      int            `json:"province_id"`
		CostRingID      int            `json:"cost_ring_id"`
		DeliveryTypes   []DeliveryType `json:"delivery_types"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.DeliveryTypes == nil {
		w.DeliveryTypes = []DeliveryType{}
	}
	*m = Municipality(w)
	return nil
}

// Province with its delivery municipalities.
type Province struct {
	ID             int                  `json:"id"`
	Name           string               `json:"name"`
	Slug           string               `json:"slug"`
	DeliveryStatus enums.DeliveryStatus `json:"deliveryStatus"`
	Municipalities []Municipality       `json:"municipalities"`
}

func (p *Province) UnmarshalJSON(data []byte) error {
	var w struct {
		ID             int                  `json:"id"`
		Name           string               `json:"name"`
		Slug           string               `json:"slug"`
		DeliveryStatus enums.DeliveryStatus `json:"delivery_status"`
		Municipalities []Municipality       `json:"municipalities"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.DeliveryStatus == "" {
		w.DeliveryStatus = enums.DeliveryStatusInactive
	}
	if w.Municipalities == nil {
		w.Municipalities = []Municipality{}
	}
	*p = Province(w)
	return nil
}

// InformativeBanner is the editorial variant of a banner.
type InformativeBanner struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

// Banner is a tagged union over its `type` discriminator: a discount
// banner carries a Discount payload, an informative banner an
// InformativeBanner; unknown types carry neither.
type Banner struct {
	ID             int                `json:"id"`
	Image          string             `json:"image"`
	MobileImage    string             `json:"mobileImage"`
	Status         enums.BannerStatus `json:"status"`
	Type           enums.BannerType   `json:"type"`
	BannerableID   int                `json:"bannerableId"`
	BannerableType string             `json:"bannerableType"`
	Discount       *Discount          `json:"discount,omitempty"`
	Informative    *InformativeBanner `json:"informative,omitempty"`
}

func (b *Banner) UnmarshalJSON(data []byte) error {
	var w struct {
		ID             int                `json:"id"`
		Image          string             `json:"image"`
		MobileImage    string             `json:"mobile_image"`
		Status         enums.BannerStatus `json:"status"`
		Type           enums.BannerType   `json:"type"`
		BannerableID   int                `json:"bannerable_id"`
		BannerableType string             `json:"bannerable_type"`
		Bannerable     json.RawMessage    `json:"bannerable"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.Status == "" {
		w.Status = enums.BannerStatusInactive
	}
	if w.Type == "" {
		w.Type = enums.BannerTypeInformative
	}

	*b = Banner{
		ID:             w.ID,
		Image:          w.Image,
		MobileImage:    w.MobileImage,
		Status:         w.Status,
		Type:           w.Type,
		BannerableID:   w.BannerableID,
		BannerableType: w.BannerableType,
	}

	if len(w.Bannerable) == 0 || string(w.Bannerable) == "null" {
		return nil
	}
	switch w.Type {
	case enums.BannerTypeDiscount:
		var discount Discount
		if err := json.Unmarshal(w.Bannerable, &discount); err != nil {
			return err
		}
		b.Discount = &discount
	case enums.BannerTypeInformative:
		var informative InformativeBanner
		if err := json.Unmarshal(w.Bannerable, &informative); err != nil {
			return err
		}
		b.Informative = &informative
	}
	return nil
}

// Currency accepted by the marketplace.
type Currency struct {
	ID              int     `json:"id"`
	Name            string  `json:"name"`
	ISOCode         string  `json:"isoCode"`
	IsDefault       bool    `json:"isDefault"`
	ConversionValue float64 `json:"conversionValue"`
	CreatedAt       *string `json:"createdAt"`
	UpdatedAt       *string `json:"updatedAt"`
}

func (c *Currency) UnmarshalJSON(data []byte) error {
	var w struct {
		ID              int      `json:"id"`
		Name            string   `json:"name"`
		ISOCode         string   `json:"iso_code"`
		IsDefault       bool     `json:"is_default"`
		ConversionValue *float64 `json:"conversion_value"`
		CreatedAt       *string  `json:"created_at"`
		UpdatedAt       *string  `json:"updated_at"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	conversion := 1.0
	if w.ConversionValue != nil {
		conversion = *w.ConversionValue
	}
	*c = Currency{
		ID:              w.ID,
		Name:            w.Name,
		ISOCode:         w.ISOCode,
		IsDefault:       w.IsDefault,
		ConversionValue: conversion,
		CreatedAt:       w.CreatedAt,
		UpdatedAt:       w.UpdatedAt,
	}
	return nil
}

// FAQ entry from site settings.
type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Settings is the site-wide configuration block.
type Settings struct {
	SiteName        string  `json:"site_name"`
	SiteActive      bool    `json:"site_active"`
	Email           string  `json:"email"`
	Phone           *string `json:"phone"`
	Address         string  `json:"address"`
	Facebook        *string `json:"facebook"`
	X               *string `json:"x"`
	Instagram       *string `json:"instagram"`
	LogoLight       string  `json:"logo_light"`
	LogoDark        string  `json:"logo_dark"`
	TermsConditions string  `json:"terms_conditions"`
	PrivacyPolicies string  `json:"privacy_policies"`
	CookiesPolicies string  `json:"cookies_policies"`
	LegalNotice     string  `json:"legal_notice"`
	FAQ             []FAQ   `json:"frequently_questions"`
}

// MarketplaceHome groups the curated product sections of the home page.
type MarketplaceHome struct {
	RecommendedProducts []Product `json:"recommendedProducts"`
	NewArrivals         []Product `json:"newArrivals"`
}

func (m *MarketplaceHome) UnmarshalJSON(data []byte) error {
	var w struct {
		RecommendedProducts []Product `json:"recommended_products"`
		NewArrivals         []Product `json:"new_arrivals"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.RecommendedProducts == nil {
		w.RecommendedProducts = []Product{}
	}
	if w.NewArrivals == nil {
		w.NewArrivals = []Product{}
	}
	*m = MarketplaceHome(w)
	return nil
}

// User is the authenticated marketplace account. The customer block
// decides storefront access; admin/permission payloads pass through
// untouched.
type User struct {
	ID               int              `json:"id"`
	Name             string           `json:"name"`
	Email            string           `json:"email"`
	PhoneCountryCode *string          `json:"phone_country_code"`
	Phone            *string          `json:"phone"`
	Address          *string          `json:"address"`
	Status           enums.UserStatus `json:"status"`
	EmailVerifiedAt  *string          `json:"email_verified_at"`
	Avatar           *string          `json:"avatar"`
	GoogleID         *string          `json:"google_id"`
	CreatedAt        *string          `json:"created_at"`
	UpdatedAt        *string          `json:"updated_at"`
	Admin            json.RawMessage  `json:"admin,omitempty"`
	Customer         json.RawMessage  `json:"customer,omitempty"`
	Permissions      []string         `json:"permissions"`
}

func (u *User) UnmarshalJSON(data []byte) error {
	type alias User
	aux := (*alias)(u)
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}
	if u.Status == "" {
		u.Status = enums.UserStatusEnabled
	}
	if u.Permissions == nil {
		u.Permissions = []string{}
	}
	return nil
}

// IsCustomer reports whether the account carries a customer profile.
func (u User) IsCustomer() bool {
	return len(u.Customer) > 0 && string(u.Customer) != "null"
}

// AuthResponse is the upstream login result.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// TransportationPrice is the quoted delivery cost for a weight bracket.
type TransportationPrice struct {
	Price             decimal.Decimal `json:"price"`
	PriceWithDiscount decimal.Decimal `json:"price_with_discount"`
	WeightRange       string          `json:"weight_range"`
	HasDiscount       bool            `json:"has_discount"`
}
