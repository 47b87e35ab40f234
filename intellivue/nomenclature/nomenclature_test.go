package nomenclature

import "testing"

func TestPartitionQualifiedLookupDoesNotCollide(t *testing.T) {
	r := New()

	gotObj, ok := r.Name(PartObj, AttrNetAddrInfo)
	if !ok || gotObj != "NOM_ATTR_NET_ADDR_INFO" {
		t.Fatalf("Name(PartObj, %d) = %q, %v; want NOM_ATTR_NET_ADDR_INFO, true", AttrNetAddrInfo, gotObj, ok)
	}

	gotSCADA, ok := r.Name(PartSCADA, SatO2VenCent)
	if !ok || gotSCADA != "NOM_SAT_O2_VEN_CENT" {
		t.Fatalf("Name(PartSCADA, %d) = %q, %v; want NOM_SAT_O2_VEN_CENT, true", SatO2VenCent, gotSCADA, ok)
	}

	if AttrNetAddrInfo != SatO2VenCent {
		t.Fatalf("test setup invalid: codes must collide numerically, got %d and %d", AttrNetAddrInfo, SatO2VenCent)
	}

	// Same numeric code, wrong partition: must not resolve to the other
	// partition's name.
	if name, ok := r.Name(PartObj, SatO2VenCent); ok && name == "NOM_SAT_O2_VEN_CENT" {
		t.Fatalf("Name(PartObj, %d) leaked the SCADA entry: got %q", SatO2VenCent, name)
	}
}

func TestNameAnyPrefersSCADA(t *testing.T) {
	r := New()
	name, part, ok := r.NameAny(AttrNetAddrInfo) // == SatO2VenCent numerically
	if !ok {
		t.Fatal("NameAny: expected a match")
	}
	if part != PartSCADA {
		t.Errorf("NameAny(%d) resolved partition = %v, want PartSCADA", AttrNetAddrInfo, part)
	}
	if name != "NOM_SAT_O2_VEN_CENT" {
		t.Errorf("NameAny(%d) = %q, want NOM_SAT_O2_VEN_CENT", AttrNetAddrInfo, name)
	}
}

func TestCodeRoundTrip(t *testing.T) {
	r := New()
	code, ok := r.Code(PartObj, "NOM_ATTR_NU_VAL_OBS")
	if !ok || code != AttrNuValObs {
		t.Fatalf("Code(PartObj, NOM_ATTR_NU_VAL_OBS) = %d, %v; want %d, true", code, ok, AttrNuValObs)
	}
}

func TestUnknownLookupMisses(t *testing.T) {
	r := New()
	if _, ok := r.Name(PartObj, 0xFFFF); ok {
		t.Error("Name: expected miss for unregistered code")
	}
	if _, _, ok := r.NameAny(0xFFFF); ok {
		t.Error("NameAny: expected miss for unregistered code")
	}
}

func TestStateFlagNamesNoneSet(t *testing.T) {
	if names := StateFlagNames(0); len(names) != 0 {
		t.Errorf("StateFlagNames(0) = %v, want empty", names)
	}
}

func TestStateFlagNamesHighAndLowBits(t *testing.T) {
	names := StateFlagNames(0x8001)
	want := []string{"INVALID", "MSMT_STATE_AL_INHIBITED"}
	if len(names) != len(want) || names[0] != want[0] || names[1] != want[1] {
		t.Errorf("StateFlagNames(0x8001) = %v, want %v", names, want)
	}
}

func TestStateFlagNamesMidBits(t *testing.T) {
	// TEST_DATA (0x0800) and DEMO_DATA (0x0400) are below the
	// MeasurementIsValid threshold (0x1000) but still symbolic flags rather
	// than a validity indicator.
	names := StateFlagNames(0x0C00)
	want := []string{"TEST_DATA", "DEMO_DATA"}
	if len(names) != len(want) || names[0] != want[0] || names[1] != want[1] {
		t.Errorf("StateFlagNames(0x0C00) = %v, want %v", names, want)
	}
}

func TestStateFlagNamesAllBits(t *testing.T) {
	names := StateFlagNames(0xFFFF)
	if len(names) != 16 {
		t.Fatalf("StateFlagNames(0xFFFF) returned %d names, want 16", len(names))
	}
	if names[0] != "INVALID" || names[15] != "MSMT_STATE_AL_INHIBITED" {
		t.Errorf("StateFlagNames(0xFFFF) = %v, want ordered high-to-low", names)
	}
}
