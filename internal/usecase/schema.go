package usecase

import "github.com/sashabaranov/go-openai/jsonschema"

// Schema fragments are built fresh on every call: the options fragment embeds
// the option ids of the current request, so nothing here may be shared.

func object(props map[string]jsonschema.Definition, required ...string) jsonschema.Definition {
	return jsonschema.Definition{
		Type:                 jsonschema.Object,
		Properties:           props,
		Required:             required,
		AdditionalProperties: false,
	}
}

func arrayOf(item jsonschema.Definition, description string) jsonschema.Definition {
	return jsonschema.Definition{
		Type:        jsonschema.Array,
		Description: description,
		Items:       &item,
	}
}

func str(description string) jsonschema.Definition {
	return jsonschema.Definition{Type: jsonschema.String, Description: description}
}

func productBaseProperties() map[string]jsonschema.Definition {
	return map[string]jsonschema.Definition{
		"name":        str("Product name, no brand names"),
		"description": str("Product description, simple HTML (p, ul, li, strong) allowed"),
		"price":       {Type: jsonschema.Number, Description: "Gross price, greater than 0"},
		"stock":       {Type: jsonschema.Integer, Description: "Units in stock, 0 or more"},
	}
}

func reviewFragment() jsonschema.Definition {
	review := object(map[string]jsonschema.Definition{
		"externalUser":  str("Reviewer display name"),
		"externalEmail": str("Reviewer e-mail address"),
		"title":         str("Review headline"),
		"content":       str("Review body"),
		"points":        {Type: jsonschema.Integer, Description: "Rating from 1 to 5"},
		"status":        {Type: jsonschema.Boolean, Description: "Whether the review is published"},
	}, "externalUser", "externalEmail", "title", "content", "points", "status")
	return arrayOf(review, "At least 5 customer reviews")
}

func optionsFragment(optionIDs []string) jsonschema.Definition {
	enum := make([]string, len(optionIDs))
	copy(enum, optionIDs)
	ref := object(map[string]jsonschema.Definition{
		"id": {Type: jsonschema.String, Enum: enum, Description: "Id of a property option"},
	}, "id")
	return arrayOf(ref, "At least 2 property options that describe the product")
}

// productSchema composes the product shape for one request: the base shape,
// plus reviews when requested, plus an options field restricted to the given
// ids when property groups were supplied.
func productSchema(withReviews bool, optionIDs []string) *jsonschema.Definition {
	props := productBaseProperties()
	required := []string{"name", "description", "price", "stock"}
	if withReviews {
		props["productReviews"] = reviewFragment()
		required = append(required, "productReviews")
	}
	if len(optionIDs) > 0 {
		props["options"] = optionsFragment(optionIDs)
		required = append(required, "options")
	}
	def := object(props, required...)
	return &def
}

func briefListSchema() *jsonschema.Definition {
	brief := object(map[string]jsonschema.Definition{
		"nameIdea":       str("Working name of the product concept"),
		"targetAudience": str("Who the product is for"),
		"priceTier": {
			Type: jsonschema.String,
			Enum: []string{"budget", "mid", "premium"},
		},
		"differentiators": arrayOf(str(""), "3 to 6 short points that set the concept apart"),
	}, "nameIdea", "targetAudience", "differentiators")
	def := object(map[string]jsonschema.Definition{
		"briefs": arrayOf(brief, "Distinct product concepts"),
	}, "briefs")
	return &def
}

func propertyGroupsSchema() *jsonschema.Definition {
	option := object(map[string]jsonschema.Definition{
		"name":         str("Option value, e.g. Red or Oak"),
		"colorHexCode": str("Hex code like #ff0000, only for color groups"),
	}, "name")
	group := object(map[string]jsonschema.Definition{
		"name":        str("Property group name, e.g. Color"),
		"description": str("Short description of the property"),
		"displayType": {Type: jsonschema.String, Enum: []string{"text", "color"}},
		"options":     arrayOf(option, "Selectable values of the group"),
	}, "name", "description", "displayType", "options")
	def := object(map[string]jsonschema.Definition{
		"propertyGroups": arrayOf(group, "Property groups"),
	}, "propertyGroups")
	return &def
}
