package cache

import "fmt"

// Key is a fully qualified cache key. Build keys through a KeyBuilder only.
type Key string

// keyVersion is bumped whenever the shape of a cached value changes.
const keyVersion = "v1"

// KeyBuilder produces namespaced keys for every cached read path.
type KeyBuilder struct {
	prefix string
}

func NewKeyBuilder(namespace string) KeyBuilder {
	if namespace == "" {
		namespace = "trucksigns"
	}
	return KeyBuilder{prefix: namespace + ":" + keyVersion + ":"}
}

func (b KeyBuilder) key(parts string) Key {
	return Key(b.prefix + parts)
}

func (b KeyBuilder) Categories() Key {
	return b.key("categories:ids")
}

func (b KeyBuilder) LetteringItemCategories() Key {
	return b.key("lettering_item_categories:ids")
}

func (b KeyBuilder) Products() Key {
	return b.key("products:ids")
}

func (b KeyBuilder) ProductColors() Key {
	return b.key("product_colors:ids")
}

// TruckSignCategory holds the single id of the "Truck Sign" category.
func (b KeyBuilder) TruckSignCategory() Key {
	return b.key("categories:truck_sign:id")
}

func (b KeyBuilder) Logos(categoryID uint) Key {
	return b.key(fmt.Sprintf("logos:%d:ids", categoryID))
}

func (b KeyBuilder) VisibleComments() Key {
	return b.key("comments:visible:ids")
}
