package types

// IngredientAmount is one (ingredient, quantity) pair of a recipe payload
type IngredientAmount struct {
	ID     uint `json:"id"`
	Amount int  `json:"amount"`
}

// RecipeRequest is the body of POST /recipes and PATCH /recipes/{id}.
// Image is a base64 data URI; it may be omitted on update to keep the
// current image.
type RecipeRequest struct {
	Name        string             `json:"name"`
	Text        string             `json:"text"`
	CookingTime int                `json:"cooking_time"`
	Image       string             `json:"image"`
	Ingredients []IngredientAmount `json:"ingredients"`
	Tags        []uint             `json:"tags"`
}

// RegisterRequest is the body of POST /users
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email,max=254"`
	Username  string `json:"username" binding:"required,max=150"`
	FirstName string `json:"first_name" binding:"required,max=150"`
	LastName  string `json:"last_name" binding:"required,max=150"`
	Password  string `json:"password" binding:"required,min=8,max=128"`
}

// SetPasswordRequest is the body of POST /users/set_password
type SetPasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=128"`
}

// PageRequest selects one page of a list. Page is 1-based.
type PageRequest struct {
	Page  int
	Limit int
}

// Offset returns the row offset of the requested page. Only meaningful
// once StartsWithin has accepted the page.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

// pages is the number of pages needed for count rows
func (p PageRequest) pages(count int64) int64 {
	n := count / int64(p.Limit)
	if count%int64(p.Limit) != 0 {
		n++
	}
	return n
}

// StartsWithin reports whether the page begins inside a result set of
// count rows. Computed without multiplying so huge pages cannot overflow.
func (p PageRequest) StartsWithin(count int64) bool {
	return p.Page >= 1 && p.Limit >= 1 && int64(p.Page-1) < p.pages(count)
}

// HasNext reports whether rows remain after this page
func (p PageRequest) HasNext(count int64) bool {
	return p.Limit >= 1 && int64(p.Page) < p.pages(count)
}

// RecipeFilter narrows GET /recipes
type RecipeFilter struct {
	AuthorID         uint
	TagSlugs         []string
	IsFavorited      bool
	IsInShoppingCart bool
}
