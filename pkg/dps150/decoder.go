package dps150

import "github.com/golang/glog"

// InfoHandler receives identification strings (model name, hardware and
// firmware versions) reported by the device.
type InfoHandler interface {
	HandleInfo(Field, string)
}

// HandleInfoFunc is the func form of InfoHandler.
type HandleInfoFunc func(Field, string)

// HandleInfo implements InfoHandler.
func (f HandleInfoFunc) HandleInfo(field Field, text string) {
	f(field, text)
}

// Stats counts decoder events.
type Stats struct {
	Frames         uint64 // frames with a valid checksum
	ChecksumErrors uint64
	SkippedBytes   uint64 // bytes discarded while seeking a header
	UnknownFields  uint64
	FieldErrors    uint64
	DroppedBytes   uint64 // bytes dropped by the buffer limit
}

// Decoder extracts device -> host frames from received bytes and applies
// them to a State.
type Decoder struct {
	Buffer StreamBuffer
	Info   InfoHandler

	state *State
	stats Stats
}

// NewDecoder creates a Decoder updating st.
func NewDecoder(st *State) *Decoder {
	return &Decoder{state: st}
}

// Stats returns the counters.
func (d *Decoder) Stats() Stats {
	s := d.stats
	s.DroppedBytes = d.Buffer.Dropped()
	return s
}

// Decode appends data and applies all complete frames found in the buffer.
// It returns true if at least one frame was applied.
func (d *Decoder) Decode(data []byte) (updated bool) {
	d.Buffer.Append(data)
	buf := d.Buffer.Bytes()
	pos, skipStart := 0, -1
	for len(buf) >= pos+FrameSize {
		if Header(buf[pos]) != HeaderInput || Command(buf[pos+1]) != CmdGet {
			if skipStart < 0 {
				skipStart = pos
			}
			pos++
			d.stats.SkippedBytes++
			continue
		}
		length := int(buf[pos+3])
		end := pos + 4 + length
		if end >= len(buf) {
			break
		}
		field := Field(buf[pos+2])
		if sum := Checksum(buf[pos+2 : end]...); sum != buf[end] {
			err := &ChecksumError{Field: field, Expected: sum, Actual: buf[end]}
			glog.Warning(err)
			d.stats.ChecksumErrors++
			d.stats.SkippedBytes++
			pos++
			continue
		}
		if skipStart >= 0 {
			glog.V(3).Infof("skipped %d bytes: % X", pos-skipStart, buf[skipStart:pos])
			skipStart = -1
		}
		d.stats.Frames++
		d.dispatch(field, buf[pos+4:end])
		pos = end + 1
		updated = true
	}
	d.Buffer.Discard(pos)
	return
}

func (d *Decoder) dispatch(field Field, payload []byte) {
	if infoFields[field] {
		text, err := TextOf(payload)
		if err != nil {
			err.(*FieldError).Field = field
			d.fieldError(err)
			return
		}
		glog.Infof("%s:%s", field, text)
		if h := d.Info; h != nil {
			h.HandleInfo(field, text)
		}
		return
	}
	handled, err := apply(d.state, field, payload)
	if !handled {
		glog.V(1).Infof("ignored cmd:%X", byte(field))
		d.stats.UnknownFields++
		return
	}
	if err != nil {
		d.fieldError(err)
	}
}

func (d *Decoder) fieldError(err error) {
	glog.Warningf("frame dropped: %v", err)
	d.stats.FieldErrors++
}
