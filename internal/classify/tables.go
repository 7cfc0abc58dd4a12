package classify

// rule pairs a lowercase substring pattern with the device type it
// implies. Rules are checked in order; the first match wins.
type rule struct {
	pattern    string
	deviceType string
}

// vendorRules classifies by resolved vendor name. The list is ordered
// from more to less specific so broad names do not shadow narrow ones.
var vendorRules = []rule{
	// Phones and mobile devices. Apple could be any category; phone is
	// the most common case by far.
	{"apple", TypePhone},
	{"samsung electronics", TypePhone},
	{"xiaomi", TypePhone},
	{"huawei", TypePhone},
	{"oneplus", TypePhone},
	{"oppo", TypePhone},
	{"vivo", TypePhone},
	{"realme", TypePhone},
	{"motorola", TypePhone},
	{"nokia", TypePhone},
	{"lg electronics", TypePhone},
	{"zte", TypePhone},
	{"google", TypePhone},
	{"fairphone", TypePhone},
	{"nothing", TypePhone},

	// Computers and laptops.
	{"dell", TypeLaptop},
	{"lenovo", TypeLaptop},
	{"hewlett packard", TypeLaptop},
	{"hp inc", TypeLaptop},
	{"asus", TypeLaptop},
	{"acer", TypeLaptop},
	{"microsoft", TypeComputer},
	{"intel corporate", TypeComputer},
	{"gigabyte", TypeComputer},
	{"msi", TypeComputer},

	// Audio.
	{"bose", TypeHeadphones},
	{"sony", TypeHeadphones},
	{"sennheiser", TypeHeadphones},
	{"jabra", TypeHeadphones},
	{"beats", TypeHeadphones},
	{"jbl", TypeSpeaker},
	{"harman", TypeSpeaker},
	{"bang & olufsen", TypeSpeaker},
	{"sonos", TypeSpeaker},
	{"skullcandy", TypeHeadphones},
	{"audio-technica", TypeHeadphones},
	{"plantronics", TypeHeadphones},
	{"anker", TypeHeadphones},

	// Watches and wearables.
	{"fitbit", TypeWatch},
	{"garmin", TypeWatch},
	{"polar", TypeWatch},
	{"suunto", TypeWatch},
	{"whoop", TypeWearable},
	{"oura", TypeWearable},

	// Smart home and IoT.
	{"amazon", TypeSmartHome},
	{"ring", TypeSmartHome},
	{"nest", TypeSmartHome},
	{"philips", TypeSmartHome},
	{"ikea", TypeSmartHome},
	{"tuya", TypeSmartHome},
	{"shelly", TypeSmartHome},
	{"switchbot", TypeSmartHome},
	{"aqara", TypeSmartHome},
	{"wyze", TypeSmartHome},
	{"eufy", TypeSmartHome},
	{"ecobee", TypeSmartHome},
	{"hue", TypeSmartHome},
	{"smartthings", TypeSmartHome},
	{"tp-link", TypeSmartHome},
	{"meross", TypeSmartHome},
	{"govee", TypeSmartHome},
	{"lifx", TypeSmartHome},
	{"nanoleaf", TypeSmartHome},
	{"yale", TypeSmartHome},
	{"august", TypeSmartHome},
	{"schlage", TypeSmartHome},

	// TVs and displays.
	{"roku", TypeTV},
	{"vizio", TypeTV},
	{"tcl", TypeTV},
	{"hisense", TypeTV},
	{"chromecast", TypeTV},
	{"fire tv", TypeTV},

	// Vehicles.
	{"tesla", TypeVehicle},
	{"ford", TypeVehicle},
	{"gm", TypeVehicle},
	{"volkswagen", TypeVehicle},
	{"bmw", TypeVehicle},
	{"mercedes", TypeVehicle},
	{"audi", TypeVehicle},
	{"toyota", TypeVehicle},
	{"honda", TypeVehicle},
	{"nissan", TypeVehicle},
	{"hyundai", TypeVehicle},
	{"kia", TypeVehicle},
	{"volvo", TypeVehicle},
	{"rivian", TypeVehicle},
	{"lucid", TypeVehicle},
	{"harley", TypeVehicle},
	{"continental auto", TypeVehicle},
	{"bosch", TypeVehicle},
	{"denso", TypeVehicle},

	// Gaming.
	{"nintendo", TypeGaming},
	{"playstation", TypeGaming},
	{"xbox", TypeGaming},
	{"valve", TypeGaming},
	{"razer", TypeGaming},
	{"steelseries", TypeGaming},
	{"logitech", TypeGaming},

	// Cameras.
	{"gopro", TypeCamera},
	{"canon", TypeCamera},
	{"nikon", TypeCamera},
	{"dji", TypeCamera},
	{"insta360", TypeCamera},

	// Printers.
	{"epson", TypePrinter},
	{"brother", TypePrinter},
	{"xerox", TypePrinter},

	// Network equipment.
	{"cisco", TypeNetwork},
	{"netgear", TypeNetwork},
	{"ubiquiti", TypeNetwork},
	{"aruba", TypeNetwork},
	{"linksys", TypeNetwork},
	{"asus router", TypeNetwork},
	{"eero", TypeNetwork},
	{"orbi", TypeNetwork},
}

// serviceUUIDRules fingerprints devices by advertised BLE service
// UUIDs. Patterns are lowercase hex fragments matched against the
// normalized (lowercased, hyphen-stripped) UUID. Assigned numbers per
// the Bluetooth SIG baseband specification plus common vendor UUIDs.
var serviceUUIDRules = []rule{
	// Fitness and health wearables.
	{"0000180d", TypeWearable}, // Heart Rate
	{"0000181c", TypeWearable}, // User Data
	{"00001814", TypeWearable}, // Running Speed and Cadence
	{"00001816", TypeWearable}, // Cycling Speed and Cadence
	{"00001818", TypeWearable}, // Cycling Power
	{"0000181b", TypeWearable}, // Body Composition
	{"0000181d", TypeWearable}, // Weight Scale
	{"00001810", TypeWearable}, // Blood Pressure
	{"00001808", TypeWearable}, // Glucose
	{"00001809", TypeWearable}, // Health Thermometer

	// Audio profiles.
	{"0000110b", TypeHeadphones}, // A2DP Audio Sink
	{"0000110a", TypeHeadphones}, // A2DP Audio Source
	{"0000111e", TypeHeadphones}, // Handsfree
	{"0000111f", TypeHeadphones}, // Handsfree Audio Gateway
	{"00001108", TypeHeadphones}, // Headset
	{"0000110d", TypeHeadphones}, // Advanced Audio
	{"00001203", TypeHeadphones}, // Generic Audio
	{"0000184e", TypeHeadphones}, // Audio Stream Control
	{"0000184f", TypeHeadphones}, // Broadcast Audio Scan
	{"00001850", TypeHeadphones}, // Published Audio Capabilities
	{"00001853", TypeHeadphones}, // Common Audio

	// HID / gaming peripherals.
	{"00001812", TypeGaming}, // Human Interface Device
	{"00001124", TypeGaming}, // HID (legacy)

	// Apple ecosystem services advertised by iPhones.
	{"d0611e78", TypePhone}, // Continuity
	{"7905f431", TypePhone}, // Notification Center
	{"89d3502b", TypePhone}, // Media Service
	{"0000fd6f", TypePhone}, // Continuity (short)

	// Android.
	{"0000fe9f", TypePhone}, // Google Fast Pair
	{"0000fe2c", TypePhone}, // Google Nearby

	// Smart home, beacons, trackers.
	{"0000181a", TypeSmartHome}, // Environmental Sensing
	{"0000fef5", TypeSmartHome}, // Philips Hue / Dialog
	{"0000fee7", TypeSmartHome}, // Tencent IoT
	{"0000feaa", TypeSmartHome}, // Eddystone beacons
	{"0000feab", TypeSmartHome}, // Nokia beacons
	{"0000feed", TypeSmartHome}, // Tile
	{"0000febe", TypeSmartHome}, // Bose
	{"0000feec", TypeSmartHome}, // Tile

	{"00001819", TypeWearable}, // Location and Navigation

	// Watch-adjacent manufacturer services.
	{"cba20d00", TypeWatch}, // SwitchBot
	{"0000fee0", TypeWatch}, // Mi Band / Amazfit
	{"0000feea", TypeWatch}, // Swirl Networks

	{"00001118", TypePrinter}, // Direct Printing
	{"00001119", TypePrinter}, // Reference Printing

	{"00001822", TypeCamera}, // Camera Profile
}

// serviceUUIDNames maps well-known service UUID fragments to short
// display names for diagnostics and listings.
var wellKnownServiceNames = []struct {
	pattern string
	name    string
}{
	{"0000180d", "Heart Rate"},
	{"0000180f", "Battery"},
	{"00001800", "Generic Access"},
	{"00001801", "Generic Attribute"},
	{"0000180a", "Device Info"},
	{"00001812", "HID"},
	{"0000181a", "Environmental"},
	{"0000110b", "A2DP Sink"},
	{"0000110a", "A2DP Source"},
	{"0000fd6f", "Apple Continuity"},
	{"0000fe9f", "Google Fast Pair"},
	{"0000fee0", "Mi Band"},
}

// nameRules classifies by advertised device name.
var nameRules = []struct {
	patterns   []string
	deviceType string
}{
	{[]string{"iphone", "android", "pixel", "galaxy s", "galaxy z"}, TypePhone},
	{[]string{"ipad", "tab", "tablet"}, TypeTablet},
	{[]string{"macbook", "thinkpad", "xps", "laptop"}, TypeLaptop},
	{[]string{"imac", "mac mini", "mac pro", "desktop"}, TypeComputer},
	{[]string{"watch", "band", "mi band"}, TypeWatch},
	{[]string{"airpod", "buds", "earbuds", "headphone"}, TypeHeadphones},
	{[]string{"homepod", "echo", "speaker"}, TypeSpeaker},
	{[]string{"tv", "roku", "firestick", "chromecast"}, TypeTV},
	{[]string{"car", "vehicle", "model 3", "model y", "model s"}, TypeVehicle},
}

// deviceClassMajorMap maps the classic Bluetooth major device class
// (bits 8-12 of the class of device) to a device type.
var deviceClassMajorMap = map[uint32]string{
	1: TypeComputer,   // Computer
	2: TypePhone,      // Phone
	3: TypeNetwork,    // LAN / network access point
	4: TypeHeadphones, // Audio/Video
	5: TypeGaming,     // Peripheral
	6: TypePrinter,    // Imaging
	7: TypeWearable,   // Wearable
	8: TypeGaming,     // Toy
	9: TypeWearable,   // Health
}
