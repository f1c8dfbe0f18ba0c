package alias

// builtinSeeds are the alias lists shipped with the binary. Keys are
// lower-cased entity names. A configuration file entry with the same
// folded key replaces the built-in list.
var builtinSeeds = map[string][]string{
	"litasco":           {"Litasco", "Litasco SA", "LUKOIL Litasco", "Lukoil Litasco"},
	"vijay mallya":      {"Vijay Mallya", "Vijay M. Mallya", "Vijay Mallya (businessman)", "Kingfisher Airlines Vijay Mallya"},
	"kubair mullchandi": {"Kubair Mullchandi", "K. Mullchandi"},
	"lukoil":            {"Lukoil", "PJSC Lukoil", "LUKOIL"},
}

// BuiltinSeeds returns a copy of the built-in seed mapping.
func BuiltinSeeds() map[string][]string {
	out := make(map[string][]string, len(builtinSeeds))
	for k, v := range builtinSeeds {
		out[k] = append([]string(nil), v...)
	}
	return out
}
