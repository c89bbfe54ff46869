package domain

type DisplayType string

const (
	DisplayTypeText  DisplayType = "text"
	DisplayTypeColor DisplayType = "color"
)

// PropertyGroup is a named product attribute such as "Color" or "Material".
// IDs are assigned by the caller before the group is used for product
// generation or upload.
type PropertyGroup struct {
	ID          string           `json:"id,omitempty"`
	Name        string           `json:"name" validate:"required"`
	Description string           `json:"description"`
	DisplayType DisplayType      `json:"displayType" validate:"oneof=text color"`
	Options     []PropertyOption `json:"options" validate:"min=1,dive"`
}

type PropertyOption struct {
	ID           string `json:"id,omitempty"`
	Name         string `json:"name" validate:"required"`
	ColorHexCode string `json:"colorHexCode,omitempty"`
}

// OptionIDs flattens every option id across all groups, in order.
func OptionIDs(groups []PropertyGroup) []string {
	var ids []string
	for _, g := range groups {
		for _, o := range g.Options {
			if o.ID != "" {
				ids = append(ids, o.ID)
			}
		}
	}
	return ids
}
