package firmware

import (
	"bytes"
	"testing"

	"github.com/tamzrod/modfw/internal/identity"
)

func TestFromBytes_TruncatesToPageMultiple(t *testing.T) {
	// header page + 2 full pages + a partial 100-byte remainder.
	size := PageSize + 2*PageSize + 100
	data := make([]byte, size)

	img, err := FromBytes(data)
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}
	if img.BinBegin != PageSize {
		t.Fatalf("BinBegin = %d, want %d", img.BinBegin, PageSize)
	}
	wantEnd := PageSize + 2*PageSize
	if img.BinEnd != wantEnd {
		t.Fatalf("BinEnd = %d, want %d", img.BinEnd, wantEnd)
	}
}

func TestFromBytes_RejectsImageSmallerThanHeaderPage(t *testing.T) {
	if _, err := FromBytes(make([]byte, PageSize)); err == nil {
		t.Fatal("expected error for image no larger than the header page")
	}
}

func TestPages_SkipsHeaderPageAndCoversWholeRange(t *testing.T) {
	size := PageSize + 3*PageSize
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i)
	}

	img, err := FromBytes(data)
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}

	pages := img.Pages()
	if len(pages) != 3 {
		t.Fatalf("len(pages) = %d, want 3", len(pages))
	}
	for i, p := range pages {
		wantBegin := PageSize + i*PageSize
		if p.PageBegin != wantBegin {
			t.Fatalf("page %d begin = %d, want %d", i, p.PageBegin, wantBegin)
		}
		if !bytes.Equal(p.Data, data[wantBegin:wantBegin+PageSize]) {
			t.Fatalf("page %d data mismatch", i)
		}
	}
}

func TestPageJob_IsZero(t *testing.T) {
	zero := PageJob{Data: make([]byte, PageSize)}
	if !zero.IsZero() {
		t.Fatal("expected all-zero page to report IsZero")
	}

	nonZero := PageJob{Data: make([]byte, PageSize)}
	nonZero.Data[PageSize-1] = 1
	if nonZero.IsZero() {
		t.Fatal("expected non-zero page to report !IsZero")
	}
}

func TestPageJob_FlashAddress(t *testing.T) {
	p := PageJob{PageBegin: PageSize}
	want := uint32(FlashBase + PageSize + PageOffset)
	if got := p.FlashAddress(); got != want {
		t.Fatalf("FlashAddress = 0x%X, want 0x%X", got, want)
	}
}

func TestPathFor_MatchesCatalogLayout(t *testing.T) {
	got, err := PathFor("/fw", identity.Network, "1.2.3")
	if err != nil {
		t.Fatalf("PathFor: %v", err)
	}
	want := "/fw/network/e103/1.2.3/network.bin"
	if got != want {
		t.Fatalf("PathFor = %q, want %q", got, want)
	}
}

func TestPathFor_RejectsOtherKind(t *testing.T) {
	if _, err := PathFor("/fw", identity.Other, "1.2.3"); err == nil {
		t.Fatal("expected error for non-network/camera kind")
	}
}

func TestEndFlashBlock_SuccessLayout(t *testing.T) {
	v := identity.Version{Major: 1, Minor: 2, Patch: 3}
	block := EndFlashBlock(v, false)

	if block[0] != EndFlashHeaderOK {
		t.Fatalf("byte 0 = 0x%02X, want 0x%02X", block[0], EndFlashHeaderOK)
	}
	if block[6] != 0x03 || block[7] != 0x22 {
		t.Fatalf("version bytes = %02X %02X, want 03 22", block[6], block[7])
	}
	wantEntry := []byte{0x00, 0x90, 0x00, 0x08}
	for i, b := range wantEntry {
		if block[12+i] != b {
			t.Fatalf("boot entry byte %d = 0x%02X, want 0x%02X", i, block[12+i], b)
		}
	}
	for i, b := range block {
		if i == 0 || (i >= 6 && i <= 7) || (i >= 12 && i <= 15) {
			continue
		}
		if b != 0 {
			t.Fatalf("byte %d = 0x%02X, want 0", i, b)
		}
	}
}

func TestEndFlashBlock_FailureSetsHeaderToFF(t *testing.T) {
	block := EndFlashBlock(identity.Version{}, true)
	if block[0] != EndFlashHeaderFail {
		t.Fatalf("byte 0 = 0x%02X, want 0x%02X", block[0], EndFlashHeaderFail)
	}
}
