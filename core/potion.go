package core

import (
	"fmt"
	"math"
)

// Potion is a catalog entry sold by a vendor.
type Potion struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Ingredients []Value  `json:"ingredients"`
	Effects     Effects  `json:"effects"`
	Categories  []string `json:"categories"`
	Price       float64  `json:"price"`
	Score       float64  `json:"score"`
	VendorID    string   `json:"vendorId"`
}

// Effects holds the required numeric attributes of a potion.
type Effects struct {
	Strength float64 `json:"strength"`
	Flavor   float64 `json:"flavor"`
}

// PotionFilter narrows a potion listing. The zero value matches everything.
type PotionFilter struct {
	VendorID string
}

// Match reports whether p passes the filter.
func (f PotionFilter) Match(p *Potion) bool {
	return f.VendorID == "" || p.VendorID == f.VendorID
}

// Clone returns a deep copy of p with non-nil slices.
func (p *Potion) Clone() *Potion {
	c := *p
	c.Ingredients = make([]Value, len(p.Ingredients))
	for i, v := range p.Ingredients {
		c.Ingredients[i] = v.Clone()
	}
	c.Categories = append(make([]string, 0, len(p.Categories)), p.Categories...)
	return &c
}

// Potion field names as they appear in request bodies.
const (
	fieldName        = "name"
	fieldIngredients = "ingredients"
	fieldEffects     = "effects"
	fieldStrength    = "effects.strength"
	fieldFlavor      = "effects.flavor"
	fieldCategories  = "categories"
	fieldPrice       = "price"
	fieldScore       = "score"
	fieldVendorID    = "vendorId"
)

// NewPotion builds a potion from a create request body. Every required
// field must be present; score defaults to 0.
func NewPotion(doc Document) (*Potion, error) {
	p := &Potion{Ingredients: []Value{}, Categories: []string{}}
	if err := applyDocument(p, doc, false); err != nil {
		return nil, err
	}
	return p, nil
}

// Merge returns a copy of p with the fields supplied in doc applied on top.
// The nested effects object is merged key by key. The merged potion is
// validated as a whole; p itself is never modified.
func (p *Potion) Merge(doc Document) (*Potion, error) {
	merged := p.Clone()
	if err := applyDocument(merged, doc, true); err != nil {
		return nil, err
	}
	return merged, nil
}

// applyDocument copies known fields of doc into p. With partial set, absent
// fields keep their current value; otherwise absent required fields are
// violations. Unknown fields and "id" are ignored.
func applyDocument(p *Potion, doc Document, partial bool) error {
	verr := NewValidationError(ResourcePotion)

	requiredString := func(field string, dst *string) {
		v, ok := doc[field]
		if !ok {
			if !partial {
				verr.Add(field, field+" is required")
			}
			return
		}
		s, isString := v.AsString()
		switch {
		case v.IsNull():
			verr.Add(field, field+" is required")
		case !isString:
			verr.Add(field, field+" must be a string")
		case s == "":
			verr.Add(field, field+" is required")
		default:
			*dst = s
		}
	}

	// Numeric strings are a type error, not a number.
	requiredNumber := func(field string, v Value, present bool, dst *float64) {
		if !present {
			if !partial {
				verr.Add(field, field+" is required")
			}
			return
		}
		if v.IsNull() {
			verr.Add(field, field+" is required")
			return
		}
		n, ok := v.AsNumber()
		if !ok || math.IsNaN(n) || math.IsInf(n, 0) {
			verr.Add(field, field+" must be a number")
			return
		}
		*dst = n
	}

	requiredString(fieldName, &p.Name)

	if v, ok := doc[fieldIngredients]; ok {
		if v.IsNull() {
			p.Ingredients = []Value{}
		} else if elems, isArray := v.AsArray(); isArray {
			p.Ingredients = make([]Value, len(elems))
			for i, e := range elems {
				p.Ingredients[i] = e.Clone()
			}
		} else {
			verr.Add(fieldIngredients, "ingredients must be an array")
		}
	}

	effects, hasEffects := doc[fieldEffects]
	switch {
	case hasEffects && effects.IsNull():
		verr.Add(fieldStrength, fieldStrength+" is required")
		verr.Add(fieldFlavor, fieldFlavor+" is required")
	case hasEffects && effects.Kind() != KindObject:
		verr.Add(fieldEffects, "effects must be an object")
	default:
		obj, _ := effects.AsObject()
		strength, hasStrength := obj["strength"]
		flavor, hasFlavor := obj["flavor"]
		requiredNumber(fieldStrength, strength, hasStrength, &p.Effects.Strength)
		requiredNumber(fieldFlavor, flavor, hasFlavor, &p.Effects.Flavor)
	}

	if v, ok := doc[fieldCategories]; ok {
		categories, err := decodeCategories(v)
		if err != nil {
			verr.Add(fieldCategories, err.Error())
		} else {
			p.Categories = categories
		}
	}

	price, hasPrice := doc[fieldPrice]
	requiredNumber(fieldPrice, price, hasPrice, &p.Price)

	if v, ok := doc[fieldScore]; ok {
		if v.IsNull() {
			p.Score = 0
		} else if n, isNumber := v.AsNumber(); isNumber && !math.IsNaN(n) && !math.IsInf(n, 0) {
			p.Score = n
		} else {
			verr.Add(fieldScore, "score must be a number")
		}
	}

	requiredString(fieldVendorID, &p.VendorID)

	return verr.ErrorOrNil()
}

func decodeCategories(v Value) ([]string, error) {
	if v.IsNull() {
		return []string{}, nil
	}
	elems, ok := v.AsArray()
	if !ok {
		return nil, fmt.Errorf("categories must be an array of strings")
	}
	categories := make([]string, 0, len(elems))
	for i, e := range elems {
		s, ok := e.AsString()
		if !ok {
			return nil, fmt.Errorf("categories[%d] must be a string", i)
		}
		categories = append(categories, s)
	}
	return categories, nil
}
