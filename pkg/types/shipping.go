package types

import "encoding/json"

// ShippingInfo is collected at checkout and forwarded to the payment gateway
// as metadata. It is never stored on its own.
type ShippingInfo struct {
	Name       string `json:"name" validate:"required,max=200"`
	Email      string `json:"email" validate:"required,email"`
	Address    string `json:"address" validate:"required,max=500"`
	City       string `json:"city" validate:"required,max=120"`
	PostalCode string `json:"postalCode" validate:"required,max=20"`
	Country    string `json:"country" validate:"required,max=120"`
}

// JSON returns the metadata encoding of the shipping block.
func (s ShippingInfo) JSON() (string, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
