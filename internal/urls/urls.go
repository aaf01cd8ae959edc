package urls

// MoonrakerZeroconf describes the [zeroconf] section that makes Moonraker
// advertise itself over mDNS.
const MoonrakerZeroconf = "https://moonraker.readthedocs.io/en/latest/configuration/#zeroconf"
