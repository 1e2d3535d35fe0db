package tts

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
)

// oggOpusReader extracts raw opus packets out of an Ogg container stream.
// Only the container framing is handled here; packets pass through untouched.
// The OpusHead and OpusTags header packets are consumed and never emitted.
type oggOpusReader struct {
	src     io.ReadCloser
	r       *bufio.Reader
	packets [][]byte // parsed, not yet returned
	partial []byte   // packet continuing onto the next page
	headers int      // header packets still expected at the front
}

// NewOggOpusReader wraps an Ogg/Opus stream as a FrameReader.
func NewOggOpusReader(src io.ReadCloser) FrameReader {
	return &oggOpusReader{src: src, r: bufio.NewReader(src), headers: 2}
}

func (o *oggOpusReader) Next() ([]byte, error) {
	for {
		if len(o.packets) > 0 {
			pkt := o.packets[0]
			o.packets = o.packets[1:]
			if o.headers > 0 {
				o.headers--
				continue
			}
			return pkt, nil
		}
		if err := o.readPage(); err != nil {
			return nil, err
		}
	}
}

// readPage consumes one Ogg page and appends its completed packets. A lacing
// value of 255 means the segment continues, possibly across a page boundary.
func (o *oggOpusReader) readPage() error {
	var hdr [27]byte
	if _, err := io.ReadFull(o.r, hdr[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			return fmt.Errorf("truncated ogg page header")
		}
		return err
	}
	if !bytes.Equal(hdr[0:4], []byte("OggS")) {
		return fmt.Errorf("bad ogg capture pattern")
	}

	segCount := int(hdr[26])
	table := make([]byte, segCount)
	if _, err := io.ReadFull(o.r, table); err != nil {
		return fmt.Errorf("truncated ogg segment table: %w", err)
	}

	for _, lace := range table {
		seg := make([]byte, int(lace))
		if _, err := io.ReadFull(o.r, seg); err != nil {
			return fmt.Errorf("truncated ogg segment: %w", err)
		}
		o.partial = append(o.partial, seg...)
		if lace < 255 {
			o.packets = append(o.packets, o.partial)
			o.partial = nil
		}
	}
	return nil
}

func (o *oggOpusReader) Close() error {
	return o.src.Close()
}
