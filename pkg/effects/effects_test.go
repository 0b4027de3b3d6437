// ABOUTME: Tests for individual effect processors
// ABOUTME: Checks steady-state and impulse behavior of each effect
package effects

import (
	"math"
	"testing"
)

const testRate = 48000

func TestDelayImpulseEcho(t *testing.T) {
	tests := []struct {
		name    string
		seconds float32
		want    int
	}{
		{"quarter second", 0.25, 12000},
		{"rounded", 0.30001, 14400},
		{"clamped to line", 5, 2*testRate - 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDelay(testRate)
			if got := d.DelaySamples(tt.seconds); got != tt.want {
				t.Fatalf("DelaySamples(%v) = %d, want %d", tt.seconds, got, tt.want)
			}

			out := d.Process(1, tt.seconds, 0, 1)
			if out != 1 {
				t.Fatalf("expected dry impulse, got %f", out)
			}
			for n := 1; n < tt.want; n++ {
				if out := d.Process(0, tt.seconds, 0, 1); out != 0 {
					t.Fatalf("unexpected output %f at sample %d", out, n)
				}
			}
			if out := d.Process(0, tt.seconds, 0, 1); out != 1 {
				t.Errorf("expected unit echo at sample %d, got %f", tt.want, out)
			}
		})
	}
}

func TestDelayFeedbackRepeats(t *testing.T) {
	d := NewDelay(1000)
	d.Process(1, 0.01, 0.5, 1)

	var echoes []float32
	for n := 1; n <= 30; n++ {
		if out := d.Process(0, 0.01, 0.5, 1); out != 0 {
			echoes = append(echoes, out)
		}
	}

	want := []float32{1, 0.5, 0.25}
	if len(echoes) != len(want) {
		t.Fatalf("expected %d echoes, got %v", len(want), echoes)
	}
	for i := range want {
		if echoes[i] != want[i] {
			t.Errorf("echo %d: expected %f, got %f", i, want[i], echoes[i])
		}
	}
}

func TestLimiterSteadyState(t *testing.T) {
	l := NewLimiter(testRate)

	var out float32
	for i := 0; i < testRate; i++ {
		out = l.Process(0.9, 0.5)
	}
	if math.Abs(float64(out-0.5)) > 1e-3 {
		t.Errorf("expected output ~0.5, got %f", out)
	}
}

func TestLimiterPassesQuietSignal(t *testing.T) {
	l := NewLimiter(testRate)
	for i := 0; i < 1000; i++ {
		if out := l.Process(0.3, 0.95); out != 0.3 {
			t.Fatalf("expected 0.3, got %f", out)
		}
	}
}

func TestNoiseGate(t *testing.T) {
	tests := []struct {
		name      string
		input     float32
		threshold float32
		open      bool
	}{
		{"quiet is muted", 0.01, 0.05, false},
		{"loud passes", 0.5, 0.05, true},
		{"zero threshold always open", 0.001, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewNoiseGate(testRate)
			var out float32
			for i := 0; i < testRate/2; i++ {
				out = g.Process(tt.input, tt.threshold)
			}
			if tt.open && out != tt.input {
				t.Errorf("expected gate open, got %f", out)
			}
			if !tt.open && out != 0 {
				t.Errorf("expected gate closed, got %f", out)
			}
		})
	}
}

func TestCompressorReducesLoud(t *testing.T) {
	c := NewCompressor(testRate)

	var out float32
	for i := 0; i < testRate; i++ {
		out = c.Process(1, 0.5, 4, 1)
	}

	// 6.02dB over threshold at 4:1 leaves 4.5dB of reduction
	want := float32(math.Pow(10, -4.515/20))
	if math.Abs(float64(out-want)) > 0.01 {
		t.Errorf("expected ~%f, got %f", want, out)
	}
}

func TestCompressorMakeupBelowThreshold(t *testing.T) {
	c := NewCompressor(testRate)
	out := c.Process(0.1, 0.5, 4, 2)
	if math.Abs(float64(out-0.2)) > 1e-6 {
		t.Errorf("expected makeup-only gain 0.2, got %f", out)
	}
}

func TestDistort(t *testing.T) {
	if Distort(0.5, 0) != 0.5 {
		t.Error("expected bypass at zero amount")
	}
	if Distort(0.5, 0.01) != 0.5 {
		t.Error("expected bypass at 0.01")
	}

	y := Distort(0.9, 1)
	if math.Abs(float64(y-18.9/19.9)) > 1e-6 {
		t.Errorf("expected soft clip 0.9497, got %f", y)
	}
	if Distort(-0.9, 1) != -y {
		t.Error("expected odd symmetry")
	}
	if y >= 1 {
		t.Error("distortion output should be bounded")
	}
}

func TestBitcrusherFullResolution(t *testing.T) {
	b := NewBitcrusher()
	for _, v := range []int16{0, 1, -1, 12345, -32768} {
		x := float32(v) / 32768
		if got := b.Process(x, 0, 0, 1); got != x {
			t.Errorf("expected %f unchanged at 16 bits, got %f", x, got)
		}
	}
}

func TestBitcrusherHoldsSamples(t *testing.T) {
	b := NewBitcrusher()

	// rate 0.5 holds for 25.5 samples
	for i := 0; i < 25; i++ {
		if out := b.Process(0.25, 0, 0.5, 1); out != 0 {
			t.Fatalf("sample %d: expected held zero, got %f", i, out)
		}
	}
	if out := b.Process(0.25, 0, 0.5, 1); out != 0.25 {
		t.Errorf("expected new hold value 0.25, got %f", out)
	}
}

func TestTremoloZeroDepthIsTransparent(t *testing.T) {
	tr := NewTremolo(testRate)
	for i := 0; i < 1000; i++ {
		if out := tr.Process(0.7, 0, 5); out != 0.7 {
			t.Fatalf("expected 0.7, got %f", out)
		}
	}
}

func TestTremoloModulatesWithinDepth(t *testing.T) {
	tr := NewTremolo(testRate)
	lo, hi := float32(1), float32(0)
	for i := 0; i < testRate; i++ {
		out := tr.Process(1, 0.5, 5)
		if out < lo {
			lo = out
		}
		if out > hi {
			hi = out
		}
	}
	if lo < 0.5-1e-3 || hi > 1+1e-6 || hi-lo < 0.45 {
		t.Errorf("expected gain swing 0.5..1, got %f..%f", lo, hi)
	}
}

func TestModulatedDelaysStayFinite(t *testing.T) {
	chorus := NewChorus(testRate)
	flanger := NewFlanger(testRate)
	phaser := NewPhaser(testRate)

	for i := 0; i < testRate; i++ {
		x := float32(math.Sin(2 * math.Pi * 220 * float64(i) / testRate))
		outs := []float32{
			chorus.Process(x, 1, 100, 0.5),
			flanger.Process(x, 0.5, 100, 0.5, 0.9),
			phaser.Process(x, 1, 1, 0.9, 0.5),
		}
		for j, out := range outs {
			if math.IsNaN(float64(out)) || math.IsInf(float64(out), 0) || math.Abs(float64(out)) > 20 {
				t.Fatalf("effect %d produced %f at sample %d", j, out, i)
			}
		}
	}
}

func TestChorusDryAtZeroMix(t *testing.T) {
	c := NewChorus(testRate)
	for i := 0; i < 2000; i++ {
		x := float32(i%100) / 100
		if out := c.Process(x, 1, 2, 0); out != x {
			t.Fatalf("expected dry signal, got %f", out)
		}
	}
}

func TestReverbProducesTail(t *testing.T) {
	r := NewReverb(testRate)
	r.Process(1, 1, 0.5)

	var maxOut float32
	for i := 0; i < 10000; i++ {
		out := r.Process(0, 1, 0.5)
		if out > maxOut {
			maxOut = out
		}
	}
	if maxOut < 0.01 {
		t.Error("expected reverb tail")
	}
}

func TestReverbLengthsScaleWithRate(t *testing.T) {
	r := NewReverb(88200)
	if r.combs[0].Len() != 3114 {
		t.Errorf("expected comb length 3114 at 88.2kHz, got %d", r.combs[0].Len())
	}
	if r.allpass[1].Len() != 682 {
		t.Errorf("expected all-pass length 682 at 88.2kHz, got %d", r.allpass[1].Len())
	}
}

func TestEqFlatIsTransparent(t *testing.T) {
	e := NewEq(testRate)
	e.Update(Params{})

	for i := 0; i < 1000; i++ {
		x := float32(math.Sin(2 * math.Pi * 440 * float64(i) / testRate))
		if out := e.Process(x); math.Abs(float64(out-x)) > 1e-4 {
			t.Fatalf("sample %d: expected %f, got %f", i, x, out)
		}
	}
}

func TestAutoWahStaysFinite(t *testing.T) {
	w := NewAutoWah(testRate)
	for i := 0; i < testRate; i++ {
		x := float32(math.Sin(2 * math.Pi * 330 * float64(i) / testRate))
		out := w.Process(x, 1, 1, 1, 1)
		if math.IsNaN(float64(out)) || math.Abs(float64(out)) > 50 {
			t.Fatalf("auto-wah diverged: %f at sample %d", out, i)
		}
	}
}

func TestWahCutoffRange(t *testing.T) {
	tests := []struct {
		name             string
		env, depth, rate float32
		want             float32
	}{
		{"silence", 0, 1, 1, wahMinFreq},
		{"full drive", 1, 1, 1, wahMaxFreq},
		{"half depth", 1, 0.5, 1, 1600},
		{"half drive", 0.05, 1, 1, 1600},
		{"depth above range", 1, 4, 1, wahMaxFreq},
		{"negative depth", 1, -1, 1, wahMinFreq},
		{"hot envelope", 30, 1, 100, wahMaxFreq},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := wahCutoff(tt.env, tt.depth, tt.rate)
			if math.Abs(float64(got-tt.want)) > 0.5 {
				t.Errorf("wahCutoff(%v, %v, %v) = %f, want %f", tt.env, tt.depth, tt.rate, got, tt.want)
			}
			if got < wahMinFreq || got > wahMaxFreq {
				t.Errorf("cutoff %f outside [%d, %d]", got, wahMinFreq, wahMaxFreq)
			}
		})
	}
}

func TestModulatedDelayCapacities(t *testing.T) {
	for _, rate := range []int{8000, 44100, 48000, 96000} {
		if got, want := NewChorus(rate).line.Cap(), 30*rate/1000; got != want {
			t.Errorf("chorus line at %d Hz: got %d samples, want %d", rate, got, want)
		}
		if got, want := NewFlanger(rate).line.Cap(), 15*rate/1000; got != want {
			t.Errorf("flanger line at %d Hz: got %d samples, want %d", rate, got, want)
		}
	}
}

func TestFlangerFeedsDelayedSignalBack(t *testing.T) {
	// At 1kHz the 3ms center is exactly 3 samples; rate 0 keeps the LFO still
	f := NewFlanger(1000)

	want := map[int]float32{3: 1, 6: 0.5, 9: 0.25, 12: 0.125}
	for n := 0; n < 14; n++ {
		x := float32(0)
		if n == 0 {
			x = 1
		}
		got := f.Process(x, 0, 0, 1, 0.5)
		if got != want[n] {
			t.Errorf("sample %d: got %f, want %f", n, got, want[n])
		}
	}
}

func TestPhaserZeroDepthIsSixStageAllPass(t *testing.T) {
	// With no sweep every first-order stage is a one-sample delay
	p := NewPhaser(testRate)

	for n := 0; n < 20; n++ {
		x := float32(0)
		if n == 0 {
			x = 0.5
		}
		got := p.Process(x, 1, 0, 0, 1)
		want := float32(0)
		if n == phaserStages {
			want = 0.5
		}
		if got != want {
			t.Errorf("sample %d: got %f, want %f", n, got, want)
		}
	}
}

func TestPhaserClampsFeedbackInput(t *testing.T) {
	p := NewPhaser(testRate)

	for n := 0; n < 1000; n++ {
		got := p.Process(10, 1, 0, 0.9, 1)
		if p.last > 2 || p.last < -2 {
			t.Fatalf("feedback state %f escaped the clamp at sample %d", p.last, n)
		}
		if n >= phaserStages && got != 2 {
			t.Fatalf("sample %d: expected clamped 2, got %f", n, got)
		}
	}
}

func TestPhaserFeedbackStaysBoundedWhileSweeping(t *testing.T) {
	p := NewPhaser(testRate)

	for n := 0; n < testRate; n++ {
		out := p.Process(8, 3, 1, 0.9, 1)
		if math.IsNaN(float64(out)) || math.IsInf(float64(out), 0) {
			t.Fatalf("phaser diverged at sample %d", n)
		}
	}
}
