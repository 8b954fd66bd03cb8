package models

// Blob is a user-provided file held fully in memory.
type Blob struct {
	Name        string // original filename, informational only
	ContentType string // as reported by the client, never validated
	Data        []byte
}

func (b Blob) Size() int { return len(b.Data) }

// Slot is an optional Blob. The zero value is empty.
type Slot struct {
	blob    Blob
	present bool
}

// Present returns a filled slot.
func Present(b Blob) Slot {
	return Slot{blob: b, present: true}
}

// Get returns the blob and whether the slot is filled.
func (s Slot) Get() (Blob, bool) {
	return s.blob, s.present
}

func (s Slot) IsEmpty() bool { return !s.present }

// InputSelection holds the two inputs of a conversion.
type InputSelection struct {
	Image Slot
	Audio Slot
}

// Missing names the empty slots, in display order.
func (s InputSelection) Missing() []string {
	var missing []string
	if s.Image.IsEmpty() {
		missing = append(missing, "image")
	}
	if s.Audio.IsEmpty() {
		missing = append(missing, "audio")
	}
	return missing
}

// SlotInfo describes a slot without exposing its bytes.
type SlotInfo struct {
	Selected    bool   `json:"selected"`
	Name        string `json:"name,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Size        int    `json:"size,omitempty"`
}

func (s Slot) Info() SlotInfo {
	b, ok := s.Get()
	if !ok {
		return SlotInfo{}
	}
	return SlotInfo{Selected: true, Name: b.Name, ContentType: b.ContentType, Size: b.Size()}
}
