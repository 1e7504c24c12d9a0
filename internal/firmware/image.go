// Package firmware loads firmware images from disk, splits them into the
// erase/write/CRC page geometry the bootloader protocol expects, and
// resolves the on-disk path for a given device type and catalog version.
package firmware

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tamzrod/modfw/internal/identity"
)

// Flash geometry constants.
const (
	PageSize    = 0x800
	FlashBase   = 0x08000000
	binBegin    = PageSize // the first page is the vector/header region; skipped
	PageOffset  = 0x8800
	TrailerAddr = 0x0801F800
	BootEntry   = 0x08009000
)

// Image is a firmware binary loaded from disk, along with the page
// boundaries computed from its exact byte length.
type Image struct {
	Bytes    []byte
	BinBegin int
	BinEnd   int
}

// Load reads path and computes bin_begin/bin_end from the file's exact
// length in bytes rather than any allocated buffer size.
func Load(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("firmware: read %s: %w", path, err)
	}
	return FromBytes(data)
}

// FromBytes computes page boundaries over an already-loaded image buffer.
func FromBytes(data []byte) (*Image, error) {
	if len(data) <= binBegin {
		return nil, fmt.Errorf("firmware: image is %d bytes, too small to contain a programmable page past the header region", len(data))
	}

	remainder := len(data) - binBegin
	binEnd := len(data) - (remainder % PageSize)

	return &Image{
		Bytes:    data,
		BinBegin: binBegin,
		BinEnd:   binEnd,
	}, nil
}

// PageJob is one page's worth of image bytes plus the flash offset (before
// PageOffset is added) it belongs at.
type PageJob struct {
	PageBegin int
	Data      []byte
}

// IsZero reports whether every byte of the page is zero. An all-zero page
// is skipped entirely by the page pipeline: no erase, no write, no crc.
func (p PageJob) IsZero() bool {
	for _, b := range p.Data {
		if b != 0 {
			return false
		}
	}
	return true
}

// FlashAddress returns the flash address the bootloader should erase/write
// this page at: FlashBase + PageBegin + PageOffset.
func (p PageJob) FlashAddress() uint32 {
	return uint32(FlashBase + p.PageBegin + PageOffset)
}

// Pages returns the sequence of PageJobs spanning [BinBegin, BinEnd) in
// PageSize strides. The final page is padded with zeros if the image ends
// mid-page (BinEnd is already truncated to a page multiple, so this only
// happens if the caller constructed an Image by hand).
func (img *Image) Pages() []PageJob {
	var jobs []PageJob
	for begin := img.BinBegin; begin < img.BinEnd; begin += PageSize {
		end := begin + PageSize
		var page []byte
		if end <= len(img.Bytes) {
			page = img.Bytes[begin:end]
		} else {
			page = make([]byte, PageSize)
			copy(page, img.Bytes[begin:])
		}
		jobs = append(jobs, PageJob{PageBegin: begin, Data: page})
	}
	return jobs
}

// PathFor resolves the on-disk firmware file for a device kind and catalog
// version string: <firmware_root>/<T>/e103/<V>/<T>.bin.
func PathFor(root string, kind identity.Kind, rawVersion string) (string, error) {
	if kind != identity.Network && kind != identity.Camera {
		return "", fmt.Errorf("firmware: no catalog entry for device kind %q", kind)
	}
	t := kind.String()
	return filepath.Join(root, t, "e103", rawVersion, t+".bin"), nil
}
