package daemon

// Device is a device entry from /rest/config/devices.
type Device struct {
	DeviceID   string   `json:"deviceID"`
	Name       string   `json:"name"`
	Addresses  []string `json:"addresses,omitempty"`
	Compressed string   `json:"compression,omitempty"`
	Introducer bool     `json:"introducer,omitempty"`
	Paused     bool     `json:"paused,omitempty"`
}

// FolderDevice is a device reference inside a folder's member list.
type FolderDevice struct {
	DeviceID string `json:"deviceID"`
}

// Folder is a folder entry from /rest/config/folders.
type Folder struct {
	ID      string         `json:"id"`
	Label   string         `json:"label,omitempty"`
	Path    string         `json:"path"`
	Type    string         `json:"type,omitempty"`
	Devices []FolderDevice `json:"devices"`
	Paused  bool           `json:"paused,omitempty"`
}

// Configuration is the daemon's declared folders and devices from
// /rest/config. Never constructed locally; always decoded from a
// schema-validated response.
type Configuration struct {
	Version int      `json:"version"`
	Folders []Folder `json:"folders"`
	Devices []Device `json:"devices"`
}

// SystemStatus is the subset of /rest/system/status this system reads.
type SystemStatus struct {
	MyID   string `json:"myID"`
	Uptime int64  `json:"uptime"`
}

// SharesDevice reports whether the folder lists the given device ID as
// a member.
func (f Folder) SharesDevice(deviceID string) bool {
	for _, d := range f.Devices {
		if d.DeviceID == deviceID {
			return true
		}
	}

	return false
}
