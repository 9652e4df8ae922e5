package model

import (
	"testing"

	"github.com/goastro/indigo/internal/protocol"
)

func exposureProperty() *Property {
	return newProperty(protocol.KindNumber, &protocol.DefVector{
		Device: "CCD",
		Name:   "CCD_EXPOSURE",
		Group:  "Camera",
		Label:  "Start exposure",
		Perm:   "rw",
		State:  "Idle",
		Items: []protocol.DefItem{
			{Name: "EXPOSURE", Label: "Start exposure", Value: 0.0, Min: 0, Max: 3600, Step: 1, Format: "%g"},
		},
	})
}

func connectionProperty() *Property {
	return newProperty(protocol.KindSwitch, &protocol.DefVector{
		Device: "Mount",
		Name:   "CONNECTION",
		Group:  "Main",
		Perm:   "rw",
		Rule:   "OneOfMany",
		State:  "Ok",
		Items: []protocol.DefItem{
			{Name: "CONNECTED", Value: false},
			{Name: "DISCONNECTED", Value: true},
		},
	})
}

func TestNewProperty_ParsesDefinition(t *testing.T) {
	p := exposureProperty()

	if p.Name() != "CCD_EXPOSURE" {
		t.Errorf("Name() = %v, want CCD_EXPOSURE", p.Name())
	}
	if p.DeviceName() != "CCD" {
		t.Errorf("DeviceName() = %v, want CCD", p.DeviceName())
	}
	if p.GroupName() != "Camera" {
		t.Errorf("GroupName() = %v, want Camera", p.GroupName())
	}
	if p.Permission() != protocol.PermReadWrite {
		t.Errorf("Permission() = %v, want rw", p.Permission())
	}
	if p.State() != protocol.StateIdle {
		t.Errorf("State() = %v, want Idle", p.State())
	}

	item := p.Item("EXPOSURE")
	if item == nil {
		t.Fatal("Item(EXPOSURE) = nil, want item")
	}
	if got := item.Value(); got != 0.0 {
		t.Errorf("item value = %v, want 0", got)
	}
	if item.Property() != p {
		t.Error("item back-reference should point at the defining property")
	}
}

func TestProperty_Item_ExactMatch(t *testing.T) {
	p := exposureProperty()

	if p.Item("exposure") != nil {
		t.Error("Item() lookup must be case-sensitive")
	}
	if p.Item("MISSING") != nil {
		t.Error("Item() for an absent name should be nil")
	}
}

func TestProperty_ItemsOrder(t *testing.T) {
	p := connectionProperty()

	items := p.Items()
	if len(items) != 2 {
		t.Fatalf("len(Items()) = %d, want 2", len(items))
	}
	if items[0].Name() != "CONNECTED" || items[1].Name() != "DISCONNECTED" {
		t.Errorf("Items() order = [%s %s], want wire order [CONNECTED DISCONNECTED]",
			items[0].Name(), items[1].Name())
	}
}

func TestProperty_MergeUpdate(t *testing.T) {
	p := exposureProperty()

	target := 5.0
	p.mergeUpdate(&protocol.SetVector{
		Device:  "CCD",
		Name:    "CCD_EXPOSURE",
		State:   "Busy",
		Message: "exposure in progress",
		Items:   []protocol.SetItem{{Name: "EXPOSURE", Value: 3.2, Target: &target}},
	})

	if p.State() != protocol.StateBusy {
		t.Errorf("State() = %v, want Busy", p.State())
	}
	if p.Message() != "exposure in progress" {
		t.Errorf("Message() = %v, want 'exposure in progress'", p.Message())
	}
	if got := p.Item("EXPOSURE").Value(); got != 3.2 {
		t.Errorf("item value = %v, want 3.2", got)
	}

	// Identity fields are never overwritten by an update
	if p.Label() != "Start exposure" {
		t.Errorf("Label() = %v, update must not change labels", p.Label())
	}
	if p.Permission() != protocol.PermReadWrite {
		t.Errorf("Permission() = %v, update must not change permission", p.Permission())
	}
	if p.GroupName() != "Camera" {
		t.Errorf("GroupName() = %v, update must not change group", p.GroupName())
	}
}

func TestProperty_MergeUpdate_Partial(t *testing.T) {
	p := connectionProperty()

	// Only CONNECTED is mentioned; DISCONNECTED must keep its value
	p.mergeUpdate(&protocol.SetVector{
		Device: "Mount",
		Name:   "CONNECTION",
		State:  "Busy",
		Items:  []protocol.SetItem{{Name: "CONNECTED", Value: true}},
	})

	if got := p.Item("CONNECTED").Value(); got != true {
		t.Errorf("CONNECTED = %v, want true", got)
	}
	if got := p.Item("DISCONNECTED").Value(); got != true {
		t.Errorf("DISCONNECTED = %v, partial updates must leave absent items alone", got)
	}
}

func TestProperty_MergeUpdate_AppliesAllProvidedItems(t *testing.T) {
	p := connectionProperty()

	p.mergeUpdate(&protocol.SetVector{
		Device: "Mount",
		Name:   "CONNECTION",
		State:  "Ok",
		Items: []protocol.SetItem{
			{Name: "CONNECTED", Value: true},
			{Name: "DISCONNECTED", Value: false},
		},
	})

	if got := p.Item("CONNECTED").Value(); got != true {
		t.Errorf("CONNECTED = %v, want true", got)
	}
	if got := p.Item("DISCONNECTED").Value(); got != false {
		t.Errorf("DISCONNECTED = %v, every provided item must be applied", got)
	}
}

func TestProperty_MergeUpdate_UnknownItemsIgnored(t *testing.T) {
	p := exposureProperty()

	p.mergeUpdate(&protocol.SetVector{
		Device: "CCD",
		Name:   "CCD_EXPOSURE",
		State:  "Ok",
		Items:  []protocol.SetItem{{Name: "GAIN", Value: 100.0}},
	})

	// Updates never introduce items; only define does
	if len(p.Items()) != 1 {
		t.Errorf("len(Items()) = %d, update must not create items", len(p.Items()))
	}
}

func TestProperty_SetSingleValue_UnknownItemIsNoop(t *testing.T) {
	p := exposureProperty()

	p.SetSingleValue("MISSING", 1.0)

	for _, item := range p.Items() {
		if item.IsDirty() {
			t.Error("setting an unknown item must not stage anything")
		}
	}
}

func TestProperty_SetExclusiveValue_StagesWholeSelection(t *testing.T) {
	p := connectionProperty()

	// Stage without sending: OneOfMany clears every sibling first
	if p.rule != protocol.RuleAnyOfMany {
		for _, item := range p.items {
			item.setPending(false)
		}
	}
	p.Item("CONNECTED").SetValue(true)

	msg, _ := p.buildChange()
	if msg == nil || msg.NewSwitchVector == nil {
		t.Fatal("expected a switch change message")
	}
	if len(msg.NewSwitchVector.Items) != 2 {
		t.Fatalf("change has %d items, want the whole selection", len(msg.NewSwitchVector.Items))
	}

	values := map[string]any{}
	for _, item := range msg.NewSwitchVector.Items {
		values[item.Name] = item.Value
	}
	if values["CONNECTED"] != true {
		t.Errorf("CONNECTED = %v, want true", values["CONNECTED"])
	}
	if values["DISCONNECTED"] != false {
		t.Errorf("DISCONNECTED = %v, want false", values["DISCONNECTED"])
	}
}

func TestProperty_SetExclusiveValue_NonSwitchIsNoop(t *testing.T) {
	p := exposureProperty()

	p.SetExclusiveValue("EXPOSURE", true)

	if p.Item("EXPOSURE").IsDirty() {
		t.Error("SetExclusiveValue() on a non-switch property must be a no-op")
	}
}

func TestProperty_BuildChange_NothingStaged(t *testing.T) {
	p := exposureProperty()

	msg, _ := p.buildChange()
	if msg != nil {
		t.Errorf("buildChange() with no dirty items = %v, want nil", msg)
	}
}

func TestProperty_BuildChange_ConsumesDirtyItems(t *testing.T) {
	p := connectionProperty()
	p.Item("CONNECTED").SetValue(true)

	msg, _ := p.buildChange()
	if msg == nil {
		t.Fatal("buildChange() = nil, want change message")
	}
	if msg.NewSwitchVector == nil {
		t.Fatal("change should use the newSwitchVector verb")
	}
	if len(msg.NewSwitchVector.Items) != 1 {
		t.Fatalf("change has %d items, want only the dirty one", len(msg.NewSwitchVector.Items))
	}
	if msg.NewSwitchVector.Items[0].Name != "CONNECTED" {
		t.Errorf("change item = %v, want CONNECTED", msg.NewSwitchVector.Items[0].Name)
	}

	// Staging was consumed
	if again, _ := p.buildChange(); again != nil {
		t.Errorf("second buildChange() = %v, want nil", again)
	}
}

func TestProperty_BuildChange_LightHasNoChangePath(t *testing.T) {
	p := newProperty(protocol.KindLight, &protocol.DefVector{
		Device: "CCD",
		Name:   "CCD_STATUS",
		Items:  []protocol.DefItem{{Name: "COOLING", Value: "Ok"}},
	})

	// Force a dirty item through the internal path; lights must still never
	// produce a change message
	p.items[0].dirty = true
	p.items[0].pending = "Busy"

	if msg, _ := p.buildChange(); msg != nil {
		t.Errorf("buildChange() for a light = %v, want nil", msg)
	}
}
