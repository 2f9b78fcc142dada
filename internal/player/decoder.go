package player

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/mewkiz/flac"
)

// outChannels is the channel count every decoder emits; mono sources are duplicated.
const outChannels = 2

// ErrUnsupportedFormat is returned for files no decoder understands.
var ErrUnsupportedFormat = errors.New("unsupported format")

// audioDecoder is implemented by all format-specific decoders. Read yields
// interleaved 16-bit little-endian stereo PCM.
type audioDecoder interface {
	io.ReadSeeker
	Length() int64
	SampleRate() int
	ChannelCount() int
}

// newDecoder detects format by file extension and returns the appropriate decoder.
func newDecoder(f *os.File) (audioDecoder, error) {
	ext := strings.ToLower(filepath.Ext(f.Name()))
	switch ext {
	case ".mp3":
		return newMP3Decoder(f)
	case ".wav":
		return newWAVDecoder(f)
	case ".flac":
		return newFLACDecoder(f)
	case ".ogg":
		return newOGGDecoder(f)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

// pcmCursor holds converted output that did not fit the caller's buffer
// and tracks the output byte position for seeking.
type pcmCursor struct {
	pending []byte
	pos     int64
	total   int64
}

func (c *pcmCursor) drain(p []byte) (int, bool) {
	if len(c.pending) == 0 {
		return 0, false
	}
	n := copy(p, c.pending)
	c.pending = c.pending[n:]
	c.pos += int64(n)
	return n, true
}

func (c *pcmCursor) deliver(p, raw []byte) int {
	n := copy(p, raw)
	if n < len(raw) {
		c.pending = raw[n:]
	}
	c.pos += int64(n)
	return n
}

// target resolves a Seek request to a clamped, frame-aligned output offset.
func (c *pcmCursor) target(offset int64, whence int) int64 {
	var pos int64
	switch whence {
	case io.SeekStart:
		pos = offset
	case io.SeekCurrent:
		pos = c.pos + offset
	case io.SeekEnd:
		pos = c.total + offset
	}
	pos = max(0, min(pos, c.total))
	return pos - pos%(outChannels*2)
}

func (c *pcmCursor) moved(pos int64) {
	c.pending = nil
	c.pos = pos
}

func clamp16(v int) int16 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}

// putFrame writes one output frame, duplicating a mono sample to both channels.
func putFrame(dst []byte, samples ...int16) {
	l := samples[0]
	r := l
	if len(samples) > 1 {
		r = samples[1]
	}
	binary.LittleEndian.PutUint16(dst, uint16(l))
	binary.LittleEndian.PutUint16(dst[2:], uint16(r))
}

// --- MP3 decoder ---

// go-mp3 already emits 16-bit stereo.
type mp3Decoder struct {
	dec *mp3.Decoder
}

func newMP3Decoder(f *os.File) (*mp3Decoder, error) {
	dec, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, fmt.Errorf("decoding MP3: %w", err)
	}
	return &mp3Decoder{dec: dec}, nil
}

func (d *mp3Decoder) Read(p []byte) (int, error) { return d.dec.Read(p) }
func (d *mp3Decoder) Seek(offset int64, whence int) (int64, error) {
	return d.dec.Seek(offset, whence)
}
func (d *mp3Decoder) Length() int64     { return d.dec.Length() }
func (d *mp3Decoder) SampleRate() int   { return d.dec.SampleRate() }
func (d *mp3Decoder) ChannelCount() int { return outChannels }

// --- WAV decoder ---

type wavDecoder struct {
	pcmCursor
	file         *os.File
	pcmStart     int64 // byte offset in file where PCM data begins
	sampleRate   int
	channels     int
	srcBitDepth  int
	srcFrameSize int64
}

func newWAVDecoder(f *os.File) (*wavDecoder, error) {
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("invalid WAV file")
	}
	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("reading WAV PCM data: %w", err)
	}

	channels := int(dec.NumChans)
	bitDepth := int(dec.BitDepth)
	if channels < 1 || channels > 2 {
		return nil, fmt.Errorf("%w: %d-channel WAV", ErrUnsupportedFormat, channels)
	}
	switch bitDepth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %d-bit WAV", ErrUnsupportedFormat, bitDepth)
	}
	srcFrameSize := int64(channels * bitDepth / 8)

	pcmStart, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("getting PCM start position: %w", err)
	}

	frames := dec.PCMLen() / srcFrameSize
	return &wavDecoder{
		pcmCursor:    pcmCursor{total: frames * outChannels * 2},
		file:         f,
		pcmStart:     pcmStart,
		sampleRate:   int(dec.SampleRate),
		channels:     channels,
		srcBitDepth:  bitDepth,
		srcFrameSize: srcFrameSize,
	}, nil
}

func (d *wavDecoder) sampleAt(b []byte) int16 {
	switch d.srcBitDepth {
	case 8:
		return int16((int(b[0]) - 128) << 8)
	case 16:
		return int16(binary.LittleEndian.Uint16(b))
	case 24:
		s := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
		if s&0x800000 != 0 {
			s |= ^0xFFFFFF
		}
		return clamp16(int(s >> 8))
	default:
		return int16(int32(binary.LittleEndian.Uint32(b)) >> 16)
	}
}

func (d *wavDecoder) Read(p []byte) (int, error) {
	if n, ok := d.drain(p); ok {
		return n, nil
	}

	frames := max(1, len(p)/(outChannels*2))
	src := make([]byte, int64(frames)*d.srcFrameSize)
	n, err := io.ReadFull(d.file, src)
	got := int64(n) / d.srcFrameSize
	if got == 0 {
		if err == nil || err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		return 0, err
	}

	width := d.srcBitDepth / 8
	raw := make([]byte, got*outChannels*2)
	for i := range got {
		off := i * d.srcFrameSize
		l := d.sampleAt(src[off:])
		if d.channels == 2 {
			putFrame(raw[i*4:], l, d.sampleAt(src[off+int64(width):]))
		} else {
			putFrame(raw[i*4:], l)
		}
	}

	if err == io.ErrUnexpectedEOF {
		err = io.EOF
	}
	return d.deliver(p, raw), err
}

func (d *wavDecoder) Seek(offset int64, whence int) (int64, error) {
	pos := d.target(offset, whence)
	frame := pos / (outChannels * 2)
	if _, err := d.file.Seek(d.pcmStart+frame*d.srcFrameSize, io.SeekStart); err != nil {
		return d.pos, err
	}
	d.moved(pos)
	return pos, nil
}

func (d *wavDecoder) Length() int64     { return d.total }
func (d *wavDecoder) SampleRate() int   { return d.sampleRate }
func (d *wavDecoder) ChannelCount() int { return outChannels }

// --- FLAC decoder ---

type flacDecoder struct {
	pcmCursor
	stream     *flac.Stream
	sampleRate int
	channels   int
	bps        int
}

func newFLACDecoder(f *os.File) (*flacDecoder, error) {
	stream, err := flac.NewSeek(f)
	if err != nil {
		return nil, fmt.Errorf("decoding FLAC: %w", err)
	}

	info := stream.Info
	return &flacDecoder{
		pcmCursor:  pcmCursor{total: int64(info.NSamples) * outChannels * 2},
		stream:     stream,
		sampleRate: int(info.SampleRate),
		channels:   int(info.NChannels),
		bps:        int(info.BitsPerSample),
	}, nil
}

func (d *flacDecoder) scale(v int32) int16 {
	s := int(v)
	switch {
	case d.bps > 16:
		s >>= d.bps - 16
	case d.bps < 16:
		s <<= 16 - d.bps
	}
	return clamp16(s)
}

func (d *flacDecoder) Read(p []byte) (int, error) {
	if n, ok := d.drain(p); ok {
		return n, nil
	}

	frame, err := d.stream.ParseNext()
	if err != nil {
		return 0, err
	}

	nSamples := int(frame.Subframes[0].NSamples)
	raw := make([]byte, nSamples*outChannels*2)
	for i := range nSamples {
		l := d.scale(frame.Subframes[0].Samples[i])
		if d.channels > 1 {
			putFrame(raw[i*4:], l, d.scale(frame.Subframes[1].Samples[i]))
		} else {
			putFrame(raw[i*4:], l)
		}
	}
	return d.deliver(p, raw), nil
}

func (d *flacDecoder) Seek(offset int64, whence int) (int64, error) {
	pos := d.target(offset, whence)
	if _, err := d.stream.Seek(uint64(pos / (outChannels * 2))); err != nil {
		return d.pos, err
	}
	d.moved(pos)
	return pos, nil
}

func (d *flacDecoder) Length() int64     { return d.total }
func (d *flacDecoder) SampleRate() int   { return d.sampleRate }
func (d *flacDecoder) ChannelCount() int { return outChannels }

// --- OGG Vorbis decoder ---

type oggDecoder struct {
	pcmCursor
	reader     *oggvorbis.Reader
	sampleRate int
	channels   int
}

func newOGGDecoder(f *os.File) (*oggDecoder, error) {
	reader, err := oggvorbis.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("decoding OGG: %w", err)
	}
	return &oggDecoder{
		pcmCursor:  pcmCursor{total: reader.Length() * outChannels * 2},
		reader:     reader,
		sampleRate: reader.SampleRate(),
		channels:   reader.Channels(),
	}, nil
}

func floatTo16(s float32) int16 {
	return clamp16(int(s * 32767))
}

func (d *oggDecoder) Read(p []byte) (int, error) {
	if n, ok := d.drain(p); ok {
		return n, nil
	}

	frames := max(1, len(p)/(outChannels*2))
	samples := make([]float32, frames*d.channels)
	n, err := d.reader.Read(samples)
	got := n / d.channels
	if got == 0 {
		if err == nil {
			err = io.EOF
		}
		return 0, err
	}

	raw := make([]byte, got*outChannels*2)
	for i := range got {
		l := floatTo16(samples[i*d.channels])
		if d.channels > 1 {
			putFrame(raw[i*4:], l, floatTo16(samples[i*d.channels+1]))
		} else {
			putFrame(raw[i*4:], l)
		}
	}
	return d.deliver(p, raw), err
}

func (d *oggDecoder) Seek(offset int64, whence int) (int64, error) {
	pos := d.target(offset, whence)
	if err := d.reader.SetPosition(pos / (outChannels * 2)); err != nil {
		return d.pos, err
	}
	d.moved(pos)
	return pos, nil
}

func (d *oggDecoder) Length() int64     { return d.total }
func (d *oggDecoder) SampleRate() int   { return d.sampleRate }
func (d *oggDecoder) ChannelCount() int { return outChannels }
