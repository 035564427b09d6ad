package model

// Facility is owned by the facilities administration service. The
// reservation engine only reads it to resolve names and the active flag.
type Facility struct {
	ID       string `json:"id,omitempty" bson:"_id,omitempty"`
	Name     string `json:"name" bson:"name"`
	Capacity int    `json:"capacity" bson:"capacity"`
	Active   bool   `json:"active" bson:"active"`
}
