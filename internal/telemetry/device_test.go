package telemetry

import (
	"bytes"
	"fmt"
	"testing"
)

func TestWriteReadFIFO(t *testing.T) {
	d := New(1024)
	r := d.NewReader()
	defer r.Close()

	d.Write([]byte("1691000000.123,alt=12.34,vel=3.21,thr=70,go=1"))
	d.Write([]byte("1691000000.223,alt=12.44,vel=3.22,thr=70,go=1"))

	buf := make([]byte, 1024)
	var got []byte
	for {
		n, err := r.Read(buf, false)
		if err == ErrWouldBlock {
			break
		}
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got = append(got, buf[:n]...)
	}

	want := "1691000000.123,alt=12.34,vel=3.21,thr=70,go=1\n1691000000.223,alt=12.44,vel=3.22,thr=70,go=1\n"
	if string(got) != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestReadReturnsEAGAINWhenEmpty(t *testing.T) {
	d := New(64)
	r := d.NewReader()
	defer r.Close()

	_, err := r.Read(make([]byte, 16), false)
	if err != ErrWouldBlock {
		t.Fatalf("expected ErrWouldBlock, got %v", err)
	}
}

func TestOverwriteNeverSplitsARecord(t *testing.T) {
	d := New(200) // small buffer forces overwrite quickly
	r := d.NewReader()
	defer r.Close()

	for i := 0; i < 50; i++ {
		rec := fmt.Sprintf("1691000000.%03d,alt=%d,vel=1,thr=60,go=1", i, i)
		d.Write([]byte(rec))
	}

	buf := make([]byte, 4096)
	var got []byte
	for {
		n, err := r.Read(buf, false)
		if err == ErrWouldBlock {
			break
		}
		got = append(got, buf[:n]...)
	}

	// Every byte the reader sees must belong to a complete, newline
	// terminated record: splitting on '\n' and dropping the trailing
	// empty segment must yield only well-formed "ts,alt=..." records.
	lines := bytes.Split(bytes.TrimRight(got, "\n"), []byte("\n"))
	for _, line := range lines {
		if len(line) == 0 {
			t.Fatalf("empty record observed in stream: %q", got)
		}
		if !bytes.Contains(line, []byte("alt=")) {
			t.Fatalf("record missing alt field (possible split): %q", line)
		}
	}
	if d.DroppedRecords() == 0 {
		t.Fatalf("expected the small buffer to force at least one drop")
	}
}

func TestFIFOIsPrefixOfProducerStream(t *testing.T) {
	d := New(4096)
	r := d.NewReader()
	defer r.Close()

	var all []byte
	for i := 0; i < 20; i++ {
		rec := fmt.Sprintf("1691000000.%03d,alt=%d,vel=1,thr=60,go=1\n", i, i)
		d.Write([]byte(rec))
		all = append(all, rec...)
	}

	buf := make([]byte, 17) // force multiple short reads across records
	var got []byte
	for {
		n, err := r.Read(buf, false)
		if err == ErrWouldBlock {
			break
		}
		got = append(got, buf[:n]...)
	}

	if !bytes.Equal(got, all) {
		t.Fatalf("reader stream is not the full producer stream:\ngot  %q\nwant %q", got, all)
	}
}

func TestCloseUnblocksReaderWithEOF(t *testing.T) {
	d := New(64)
	r := d.NewReader()
	defer r.Close()

	done := make(chan struct{})
	go func() {
		n, err := r.Read(make([]byte, 16), true)
		if n != 0 || err != nil {
			t.Errorf("expected (0, nil) EOF after close, got (%d, %v)", n, err)
		}
		close(done)
	}()

	d.Close()
	<-done
}
