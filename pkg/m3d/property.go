package m3d

import "fmt"

// PropertyFormat is the value encoding of a material property.
type PropertyFormat uint8

const (
	PropertyColor PropertyFormat = iota // color index or inline RGBA, per CI_T
	PropertyUint8
	PropertyUint16
	PropertyUint32
	PropertyFloat
	PropertyMap // texture reference by name
)

// String returns a human-readable format name.
func (f PropertyFormat) String() string {
	switch f {
	case PropertyColor:
		return "color"
	case PropertyUint8:
		return "uint8"
	case PropertyUint16:
		return "uint16"
	case PropertyUint32:
		return "uint32"
	case PropertyFloat:
		return "float"
	case PropertyMap:
		return "map"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(f))
	}
}

// PropertyDef is one entry of the property catalog.
type PropertyDef struct {
	ID     uint8
	Format PropertyFormat
	Key    string
}

// Identifiers at or above mapPropertyBase are texture references.
const mapPropertyBase = 128

// propertyCatalog lists the known properties. Some identifiers carry an
// alias; the first entry for an ID is its canonical key.
var propertyCatalog = []PropertyDef{
	// scalar display properties
	{0, PropertyColor, "Kd"},
	{1, PropertyColor, "Ka"},
	{2, PropertyColor, "Ks"},
	{3, PropertyFloat, "Ns"},
	{4, PropertyColor, "Ke"},
	{5, PropertyColor, "Tf"},
	{6, PropertyFloat, "Km"},
	{7, PropertyFloat, "d"},
	{8, PropertyUint8, "il"},

	// scalar physical properties
	{64, PropertyFloat, "Pr"},
	{65, PropertyFloat, "Pm"},
	{66, PropertyFloat, "Ps"},
	{67, PropertyFloat, "Ni"},
	{68, PropertyFloat, "Nt"},

	// textured display maps
	{128, PropertyMap, "map_Kd"},
	{129, PropertyMap, "map_Ka"},
	{130, PropertyMap, "map_Ks"},
	{131, PropertyMap, "map_Ns"},
	{132, PropertyMap, "map_Ke"},
	{133, PropertyMap, "map_Tf"},
	{134, PropertyMap, "map_Km"},
	{134, PropertyMap, "map_bump"},
	{135, PropertyMap, "map_d"},
	{136, PropertyMap, "map_N"},
	{136, PropertyMap, "map_il"},

	// textured physical maps
	{192, PropertyMap, "map_Pr"},
	{193, PropertyMap, "map_Pm"},
	{193, PropertyMap, "map_refl"},
	{194, PropertyMap, "map_Ps"},
	{195, PropertyMap, "map_Ni"},
	{196, PropertyMap, "map_Nt"},
}

var (
	propertiesByID   = map[uint8]PropertyDef{}
	propertiesByName = map[string]PropertyDef{}
)

func init() {
	for _, def := range propertyCatalog {
		if _, ok := propertiesByID[def.ID]; !ok {
			propertiesByID[def.ID] = def
		}
		propertiesByName[def.Key] = def
	}
}

// LookupProperty returns the catalog entry for id. Identifiers of 128 and
// above are always texture references, even when not listed.
func LookupProperty(id uint8) (PropertyDef, bool) {
	if def, ok := propertiesByID[id]; ok {
		return def, true
	}
	if id >= mapPropertyBase {
		return PropertyDef{ID: id, Format: PropertyMap}, true
	}
	return PropertyDef{}, false
}

// LookupPropertyName returns the catalog entry for a key or alias.
func LookupPropertyName(key string) (PropertyDef, bool) {
	def, ok := propertiesByName[key]
	return def, ok
}

// PropertyCatalog returns a copy of the catalog, aliases included.
func PropertyCatalog() []PropertyDef {
	out := make([]PropertyDef, len(propertyCatalog))
	copy(out, propertyCatalog)
	return out
}
