package classify

// Device type constants stored in the device catalogue.
const (
	TypePhone      = "phone"
	TypeTablet     = "tablet"
	TypeLaptop     = "laptop"
	TypeComputer   = "computer"
	TypeWatch      = "watch"
	TypeHeadphones = "audio"
	TypeSpeaker    = "speaker"
	TypeTV         = "tv"
	TypeVehicle    = "vehicle"
	TypeSmartHome  = "smart"
	TypeWearable   = "wearable"
	TypeGaming     = "gaming"
	TypeCamera     = "camera"
	TypePrinter    = "printer"
	TypeNetwork    = "network"
	TypeUnknown    = "unknown"
)

// typeLabels maps device type constants to human-readable labels.
var typeLabels = map[string]string{
	TypePhone:      "Phone",
	TypeTablet:     "Tablet",
	TypeLaptop:     "Laptop",
	TypeComputer:   "Computer",
	TypeWatch:      "Watch",
	TypeHeadphones: "Audio",
	TypeSpeaker:    "Speaker",
	TypeTV:         "TV/Display",
	TypeVehicle:    "Vehicle",
	TypeSmartHome:  "Smart Home",
	TypeWearable:   "Wearable",
	TypeGaming:     "Gaming",
	TypeCamera:     "Camera",
	TypePrinter:    "Printer",
	TypeNetwork:    "Network",
	TypeUnknown:    "Unknown",
}

// Label returns the human-readable label for a device type.
// Unrecognized types map to the unknown label.
func Label(deviceType string) string {
	if label, ok := typeLabels[deviceType]; ok {
		return label
	}
	return typeLabels[TypeUnknown]
}

// AllTypes returns every known device type constant in display order.
func AllTypes() []string {
	return []string{
		TypePhone, TypeTablet, TypeLaptop, TypeComputer, TypeWatch,
		TypeHeadphones, TypeSpeaker, TypeTV, TypeVehicle, TypeSmartHome,
		TypeWearable, TypeGaming, TypeCamera, TypePrinter, TypeNetwork,
		TypeUnknown,
	}
}
