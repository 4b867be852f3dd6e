package dto

type CartItem struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type SuggestionRequest struct {
	CartItems    []CartItem `json:"cartItems"`
	Requirements string     `json:"requirements"`
}

type SuggestionResponse struct {
	Suggestions []string `json:"suggestions"`
}
