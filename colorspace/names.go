package colorspace

type namedColor struct {
	name string
	hex  string
}

// basic garment color vocabulary
var namedColors = []namedColor{
	{"Black", "#000000"},
	{"White", "#FFFFFF"},
	{"Ivory", "#FFFFF0"},
	{"Cream", "#F5E6CA"},
	{"Beige", "#D8C3A5"},
	{"Camel", "#C19A6B"},
	{"Brown", "#7B4A2D"},
	{"Chocolate", "#3D2B1F"},
	{"Grey", "#808080"},
	{"Light Grey", "#D3D3D3"},
	{"Charcoal", "#36454F"},
	{"Navy", "#000080"},
	{"Blue", "#1E56C8"},
	{"Light Blue", "#A8D8EA"},
	{"Teal", "#008080"},
	{"Turquoise", "#40E0D0"},
	{"Green", "#2E8B57"},
	{"Olive", "#808000"},
	{"Khaki", "#C3B091"},
	{"Yellow", "#FFD700"},
	{"Mustard", "#E1AD01"},
	{"Orange", "#FF8C00"},
	{"Coral", "#FF7F50"},
	{"Red", "#DC143C"},
	{"Burgundy", "#800020"},
	{"Pink", "#FFB6C1"},
	{"Hot Pink", "#FF69B4"},
	{"Purple", "#6A0DAD"},
	{"Lavender", "#E6E6FA"},
	{"Mauve", "#B48EAD"},
}

// NameOf returns the closest name from a small garment color vocabulary.
func NameOf(hex string) (string, error) {
	hexes := make([]string, len(namedColors))
	for i, nc := range namedColors {
		hexes[i] = nc.hex
	}
	idx, _, err := Nearest(hex, hexes)
	if err != nil {
		return "", err
	}
	return namedColors[idx].name, nil
}
