package classify

import (
	"testing"
)

func uintPtr(v uint32) *uint32 { return &v }

func TestIsProxyUUID(t *testing.T) {
	tests := []struct {
		address string
		want    bool
	}{
		{"460649E9-2306-1FF2-1272-A8D9B9D9143D", true},
		{"460649e9-2306-1ff2-1272-a8d9b9d9143d", true},
		{"AA:BB:CC:DD:EE:FF", false},
		{"460649E9-2306-1FF2-1272", false},
		{"not-a-uuid", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsProxyUUID(tt.address); got != tt.want {
			t.Errorf("IsProxyUUID(%q) = %v, want %v", tt.address, got, tt.want)
		}
	}
}

func TestIsRandomizedMAC(t *testing.T) {
	tests := []struct {
		mac  string
		want bool
	}{
		{"02:00:00:00:00:01", true},  // locally administered bit set
		{"DA:11:22:33:44:55", true},  // 0xDA & 0x02 != 0
		{"AC:DE:48:00:11:22", false}, // globally unique
		{"00:1A:2B:3C:4D:5E", false},
		{"460649E9-2306-1FF2-1272-A8D9B9D9143D", false}, // proxy UUID, bit test not applicable
		{"garbage", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsRandomizedMAC(tt.mac); got != tt.want {
			t.Errorf("IsRandomizedMAC(%q) = %v, want %v", tt.mac, got, tt.want)
		}
	}
}

func TestByServiceUUIDs(t *testing.T) {
	tests := []struct {
		name  string
		uuids []string
		want  string
	}{
		{"heart rate full form", []string{"0000180d-0000-1000-8000-00805f9b34fb"}, TypeWearable},
		{"a2dp sink", []string{"0000110B-0000-1000-8000-00805F9B34FB"}, TypeHeadphones},
		{"apple continuity", []string{"D0611E78-BBB4-4591-A5F8-487910AE4366"}, TypePhone},
		{"mi band", []string{"0000fee0-0000-1000-8000-00805f9b34fb"}, TypeWatch},
		{"first match wins", []string{"0000180d-0000-1000-8000-00805f9b34fb", "0000110b-0000-1000-8000-00805f9b34fb"}, TypeWearable},
		{"no match", []string{"12345678-0000-0000-0000-000000000000"}, ""},
		{"empty", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ByServiceUUIDs(tt.uuids); got != tt.want {
				t.Errorf("ByServiceUUIDs(%v) = %q, want %q", tt.uuids, got, tt.want)
			}
		})
	}
}

func TestByDeviceClass(t *testing.T) {
	tests := []struct {
		name  string
		class uint32
		want  string
	}{
		{"phone major class", 0x200204, TypePhone},
		{"audio major class", 0x240404, TypeHeadphones},
		{"computer major class", 0x000104, TypeComputer},
		{"unmapped major class", 0x001F00, ""},
		{"zero class", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ByDeviceClass(tt.class); got != tt.want {
				t.Errorf("ByDeviceClass(%#x) = %q, want %q", tt.class, got, tt.want)
			}
		})
	}
}

func TestClassify_Priority(t *testing.T) {
	tests := []struct {
		name string
		ev   Evidence
		want string
	}{
		{
			name: "service UUIDs beat everything",
			ev: Evidence{
				Vendor:       "Sony Corporation",
				Name:         "iPhone 15",
				ServiceUUIDs: []string{"0000180d-0000-1000-8000-00805f9b34fb"},
				DeviceClass:  uintPtr(0x000204),
			},
			want: TypeWearable,
		},
		{
			name: "name beats class and vendor",
			ev: Evidence{
				Vendor:      "Sony Corporation",
				Name:        "Living Room TV",
				DeviceClass: uintPtr(0x000204),
			},
			want: TypeTV,
		},
		{
			name: "class beats vendor",
			ev: Evidence{
				Vendor:      "Sony Corporation",
				DeviceClass: uintPtr(0x000204),
			},
			want: TypePhone,
		},
		{
			name: "vendor as last resort",
			ev:   Evidence{Vendor: "Sony Corporation"},
			want: TypeHeadphones,
		},
		{
			name: "no evidence",
			ev:   Evidence{},
			want: TypeUnknown,
		},
		{
			name: "unmatched evidence",
			ev:   Evidence{Vendor: "Acme Widgets Ltd", Name: "XJ-900"},
			want: TypeUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.ev); got != tt.want {
				t.Errorf("Classify() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClassify_NamePatterns(t *testing.T) {
	tests := []struct {
		deviceName string
		want       string
	}{
		{"Dave's iPhone", TypePhone},
		{"Galaxy S24 Ultra", TypePhone},
		{"iPad Pro", TypeTablet},
		{"MacBook Air", TypeLaptop},
		{"Mac mini", TypeComputer},
		{"Mi Band 8", TypeWatch},
		{"AirPods Pro", TypeHeadphones},
		{"HomePod", TypeSpeaker},
		{"Samsung TV", TypeTV},
		{"Model 3", TypeVehicle},
	}

	for _, tt := range tests {
		t.Run(tt.deviceName, func(t *testing.T) {
			got := Classify(Evidence{Name: tt.deviceName})
			if got != tt.want {
				t.Errorf("Classify(name=%q) = %q, want %q", tt.deviceName, got, tt.want)
			}
		})
	}
}

func TestLabel(t *testing.T) {
	if got := Label(TypeHeadphones); got != "Audio" {
		t.Errorf("Label(audio) = %q", got)
	}
	if got := Label("bogus"); got != "Unknown" {
		t.Errorf("Label(bogus) = %q", got)
	}
}

func TestServiceUUIDNames(t *testing.T) {
	names := ServiceUUIDNames([]string{
		"0000180d-0000-1000-8000-00805f9b34fb",
		"0000180f-0000-1000-8000-00805f9b34fb",
		"ffffffff-0000-0000-0000-000000000000",
	})
	if len(names) != 2 || names[0] != "Heart Rate" || names[1] != "Battery" {
		t.Errorf("unexpected names: %v", names)
	}
}
