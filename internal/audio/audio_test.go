package audio

import (
	"testing"
)

func TestBytesToSamples_RoundTrip(t *testing.T) {
	samples := []int16{0, 1, -1, 32767, -32768, 12345}

	data := SamplesToBytes(samples)
	got, err := BytesToSamples(data)
	if err != nil {
		t.Fatalf("BytesToSamples failed: %v", err)
	}

	if len(got) != len(samples) {
		t.Fatalf("Expected %d samples, got %d", len(samples), len(got))
	}
	for i := range samples {
		if got[i] != samples[i] {
			t.Errorf("Sample %d: expected %d, got %d", i, samples[i], got[i])
		}
	}
}

func TestBytesToSamples_OddLength(t *testing.T) {
	if _, err := BytesToSamples([]byte{1, 2, 3}); err == nil {
		t.Error("Expected error for odd-length PCM data")
	}
}

func TestCalculateRMS(t *testing.T) {
	if rms := CalculateRMS(nil); rms != 0 {
		t.Errorf("Expected 0 RMS for empty frame, got %f", rms)
	}

	flat := make([]int16, 160)
	for i := range flat {
		flat[i] = 1000
	}
	if rms := CalculateRMS(flat); rms < 999 || rms > 1001 {
		t.Errorf("Expected RMS near 1000 for constant signal, got %f", rms)
	}
}

func TestResample_HalvesLength(t *testing.T) {
	samples := make([]int16, 320)
	for i := range samples {
		samples[i] = int16(i)
	}

	out := Resample(samples, 16000, 8000)
	if len(out) != 160 {
		t.Errorf("Expected 160 samples after 2:1 downsample, got %d", len(out))
	}
}

func TestSampleRing_WriteRead(t *testing.T) {
	ring := NewSampleRing(8)

	ring.Write([]int16{1, 2, 3, 4})
	if ring.Len() != 4 {
		t.Errorf("Expected length 4, got %d", ring.Len())
	}

	dst := make([]int16, 2)
	if n := ring.Read(dst); n != 2 {
		t.Fatalf("Expected 2 samples read, got %d", n)
	}
	if dst[0] != 1 || dst[1] != 2 {
		t.Errorf("Expected [1 2], got %v", dst)
	}
	if ring.Len() != 2 {
		t.Errorf("Expected length 2 after read, got %d", ring.Len())
	}
}

func TestSampleRing_OverflowDropsOldest(t *testing.T) {
	ring := NewSampleRing(4)

	dropped := ring.Write([]int16{1, 2, 3, 4, 5, 6})
	if dropped != 2 {
		t.Errorf("Expected 2 dropped samples, got %d", dropped)
	}

	dst := make([]int16, 4)
	n := ring.Read(dst)
	if n != 4 {
		t.Fatalf("Expected 4 samples, got %d", n)
	}
	if dst[0] != 3 || dst[3] != 6 {
		t.Errorf("Expected oldest samples dropped, got %v", dst[:n])
	}

	if ring.Dropped() != 2 {
		t.Errorf("Expected Dropped()==2, got %d", ring.Dropped())
	}
}

func TestSampleRing_Clear(t *testing.T) {
	ring := NewSampleRing(8)
	ring.Write([]int16{1, 2, 3})
	ring.Clear()

	if ring.Len() != 0 {
		t.Errorf("Expected empty ring after Clear, got length %d", ring.Len())
	}
}

func TestLevelMeter_Bounded(t *testing.T) {
	meter := NewLevelMeter(1000)

	loud := make([]int16, 160)
	for i := range loud {
		loud[i] = 30000
	}

	level := meter.Process(loud)
	if level < 0 || level > 100 {
		t.Errorf("Expected level in [0,100], got %d", level)
	}
	if level != 100 {
		t.Errorf("Expected saturated level 100 for very loud frame, got %d", level)
	}
}

func TestLevelMeter_DecaysSmoothly(t *testing.T) {
	meter := NewLevelMeter(1000)

	loud := make([]int16, 160)
	for i := range loud {
		loud[i] = 2000
	}
	quiet := make([]int16, 160)

	peak := meter.Process(loud)
	after := meter.Process(quiet)

	if after >= peak {
		t.Errorf("Expected level to fall after silence, peak=%d after=%d", peak, after)
	}
	if after == 0 {
		t.Error("Expected smooth decay, not an instant drop to zero")
	}
}

func TestSilenceDetector_EndOfUtterance(t *testing.T) {
	det := NewSilenceDetector(500, 3)

	loud := make([]int16, 160)
	for i := range loud {
		loud[i] = 5000
	}
	quiet := make([]int16, 160)

	det.Process(loud)
	if !det.Speaking() {
		t.Fatal("Expected speaking after loud frame")
	}

	if det.Process(quiet) || det.Process(quiet) {
		t.Error("Speech must not end before the quiet-frame quota")
	}
	if !det.Process(quiet) {
		t.Error("Expected speech to end on the third quiet frame")
	}
	if det.Speaking() {
		t.Error("Expected not speaking after end of utterance")
	}
}

func TestSilenceDetector_NoEndWithoutSpeech(t *testing.T) {
	det := NewSilenceDetector(500, 2)
	quiet := make([]int16, 160)

	for i := 0; i < 10; i++ {
		if det.Process(quiet) {
			t.Fatal("Silence alone must never signal end of utterance")
		}
	}
}
