package m3d

import "testing"

func TestLookupProperty(t *testing.T) {
	tests := []struct {
		id     uint8
		ok     bool
		format PropertyFormat
		key    string
	}{
		{0, true, PropertyColor, "Kd"},
		{3, true, PropertyFloat, "Ns"},
		{8, true, PropertyUint8, "il"},
		{9, false, 0, ""},
		{64, true, PropertyFloat, "Pr"},
		{69, false, 0, ""},
		{128, true, PropertyMap, "map_Kd"},
		{134, true, PropertyMap, "map_Km"},
		{136, true, PropertyMap, "map_N"},
		{150, true, PropertyMap, ""},
		{193, true, PropertyMap, "map_Pm"},
		{255, true, PropertyMap, ""},
	}

	for _, tt := range tests {
		def, ok := LookupProperty(tt.id)
		if ok != tt.ok {
			t.Errorf("id %d: ok=%v, want %v", tt.id, ok, tt.ok)
			continue
		}
		if ok && (def.Format != tt.format || def.Key != tt.key || def.ID != tt.id) {
			t.Errorf("id %d: got %+v", tt.id, def)
		}
	}
}

func TestLookupPropertyName(t *testing.T) {
	for key, id := range map[string]uint8{"Kd": 0, "map_bump": 134, "map_Km": 134, "map_il": 136, "map_refl": 193} {
		def, ok := LookupPropertyName(key)
		if !ok || def.ID != id {
			t.Errorf("%s: got %+v (ok=%v), want id %d", key, def, ok, id)
		}
	}
	if _, ok := LookupPropertyName("map_nope"); ok {
		t.Error("unexpected entry for map_nope")
	}
}

func TestPropertyCatalog_Copy(t *testing.T) {
	cat := PropertyCatalog()
	cat[0].Key = "changed"
	if def, _ := LookupProperty(0); def.Key != "Kd" {
		t.Error("catalog copy shares storage")
	}
	for _, def := range cat {
		if def.ID >= mapPropertyBase && def.Format != PropertyMap {
			t.Errorf("id %d should be a map", def.ID)
		}
	}
}
