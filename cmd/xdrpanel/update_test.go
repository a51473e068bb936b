package main

import (
	"strings"
	"testing"
)

func feedStation(tp *testPanel) {
	tp.Apply(SignalObserved{Signal: 45, Stereo: true, RDS: true})
	tp.Apply(InterferenceObserved{CCI: 3, ACI: 7})
	tp.Apply(PIObserved{PI: 0x3201, ErrLevel: 1})
	tp.Apply(RDSFlagsObserved{TP: 1, TA: 0, MS: 1, PTY: 10})
	tp.Apply(ECCObserved{ECC: 0xE2})
	tp.Apply(PSObserved{Text: "RADIO 1 ", Errors: [psLen]int{0, 1, 0, 0, 0, 0, 2, 0}})
	tp.Apply(RTObserved{Slot: 0, Text: "Radio One"})
	tp.Apply(AFObserved{Freq: 87600})
	tp.Apply(ControlObserved{Control: ControlFilter, Value: 95000})
	tp.Apply(RotatorObserved{Direction: RotatorCW, Waiting: true})
}

func TestUpdateFunctions_SecondCallRendersNothing(t *testing.T) {
	tp := newSessionPanel(t, defaultPanelOptions(), 94500)
	feedStation(tp)
	tp.surface.reset()

	tp.UpdateFreq()
	tp.UpdateMode()
	tp.UpdateStereo()
	tp.UpdateRDSFlag()
	tp.UpdatePI()
	tp.UpdateTP()
	tp.UpdateTA()
	tp.UpdateMS()
	tp.UpdatePTY()
	tp.UpdateECC()
	tp.UpdatePS()
	tp.UpdateRT(0)
	tp.UpdateRT(1)
	tp.UpdateSignal()
	tp.UpdateCCI()
	tp.UpdateACI()
	tp.UpdateFilter()
	tp.UpdateRotator()
	tp.UpdateAF(87600)

	if len(tp.surface.updates) != 0 {
		t.Fatalf("repeated updates rendered %d changes, first: %#v", len(tp.surface.updates), tp.surface.updates[0])
	}
}

func TestUpdateFreq_TextAndBlank(t *testing.T) {
	tp := newSessionPanel(t, defaultPanelOptions(), 94500)

	tp.Apply(FreqObserved{Freq: 87600})
	u, ok := tp.surface.last("freq")
	if !ok {
		t.Fatalf("expected a freq update")
	}
	if got := u.(FreqUpdate).Text; got != "87.600" {
		t.Fatalf("freq text = %q, want %q", got, "87.600")
	}

	tp.Apply(LinkDisconnected{Reason: "closed"})
	u, _ = tp.surface.last("freq")
	if got := u.(FreqUpdate).Text; got != " " {
		t.Fatalf("freq text after disconnect = %q, want blank", got)
	}
	if u, ok := tp.surface.last("connection"); !ok || u.(ConnectionUpdate).State != "disconnected" {
		t.Fatalf("expected a disconnected connection update, got %#v", u)
	}
}

func TestUpdatePI_Variants(t *testing.T) {
	cases := []struct {
		level   int
		variant PIVariant
		text    string
		tier    Tier
	}{
		{0, PIClean, "3201", TierNormal},
		{1, PILight, "3201?", TierFaint},
		{2, PIDim, "3201?", TierDim},
		{3, PIVeryDim, "3201⁇", TierDim},
	}

	for _, tc := range cases {
		tp := newSessionPanel(t, defaultPanelOptions(), 94500)
		tp.Apply(PIObserved{PI: 0x3201, ErrLevel: tc.level})

		u, ok := tp.surface.last("pi")
		if !ok {
			t.Fatalf("level %d: expected a pi update", tc.level)
		}
		pi := u.(PIUpdate)
		if pi.Variant != tc.variant {
			t.Fatalf("level %d: variant = %v, want %v", tc.level, pi.Variant, tc.variant)
		}
		if got := segmentsText(pi.Segments); got != tc.text {
			t.Fatalf("level %d: text = %q, want %q", tc.level, got, tc.text)
		}
		if tail := pi.Segments[len(pi.Segments)-1]; tc.level > 0 && tail.Tier != tc.tier {
			t.Fatalf("level %d: marker tier = %v, want %v", tc.level, tail.Tier, tc.tier)
		}
	}
}

func TestUpdatePI_AbsentIsBlank(t *testing.T) {
	tp := newTestPanel(t, defaultPanelOptions())
	tp.UpdatePI()

	u, ok := tp.surface.last("pi")
	if !ok {
		t.Fatalf("expected a pi update")
	}
	if pi := u.(PIUpdate); pi.PI != noData || segmentsText(pi.Segments) != " " {
		t.Fatalf("absent PI rendered as %#v", pi)
	}
}

func TestUpdatePS_ErrorIntensity(t *testing.T) {
	opts := defaultPanelOptions()
	opts.ProgressivePS = true
	tp := newSessionPanel(t, opts, 94500)

	tp.Apply(PSObserved{Text: "RADIO 1 ", Errors: [psLen]int{0, 1, 2, 0, 0, 0, 0, 20}})

	u, ok := tp.surface.last("ps")
	if !ok {
		t.Fatalf("expected a ps update")
	}
	ps := u.(PSUpdate)
	if ps.Text != "RADIO 1 " {
		t.Fatalf("ps text = %q", ps.Text)
	}
	want := [psLen]uint8{0, 122, 134, 0, 0, 0, 0, 255}
	if ps.Intensity != want {
		t.Fatalf("intensity = %v, want %v", ps.Intensity, want)
	}
	if ps.Segments[0].Text != "(" || ps.Segments[len(ps.Segments)-1].Text != ")" {
		t.Fatalf("progressive PS should use round brackets, got %q", segmentsText(ps.Segments))
	}
	if seg := ps.Segments[2]; seg.Tier != TierGray || seg.Gray != 122 {
		t.Fatalf("second character segment = %#v, want gray 122", seg)
	}
	if seg := ps.Segments[1]; seg.Tier != TierNormal {
		t.Fatalf("error-free character segment = %#v, want normal tier", seg)
	}
}

func TestPSIntensity(t *testing.T) {
	if got := psIntensity(0); got != 0 {
		t.Fatalf("psIntensity(0) = %d, want 0", got)
	}
	if got := psIntensity(1); got != 122 {
		t.Fatalf("psIntensity(1) = %d, want 122", got)
	}
	if got := psIntensity(13); got != 255 {
		t.Fatalf("psIntensity(13) = %d, want 255", got)
	}
}

func TestUpdateAF_DuplicateIgnored(t *testing.T) {
	tp := newSessionPanel(t, defaultPanelOptions(), 94500)

	tp.Apply(AFObserved{Freq: 87600})
	tp.Apply(AFObserved{Freq: 87600})
	tp.Apply(AFObserved{Code: 1}) // 87.6 MHz as an RDS AF code

	if got := tp.AFList(); len(got) != 1 || got[0] != 87600 {
		t.Fatalf("AF list = %v, want [87600]", got)
	}
	if n := tp.surface.count("af_added"); n != 1 {
		t.Fatalf("af_added rendered %d times, want 1", n)
	}
	u, _ := tp.surface.last("af_added")
	if label := u.(AFUpdate).Label; label != "87.6" {
		t.Fatalf("AF label = %q, want %q", label, "87.6")
	}
}

func TestUpdateFreq_ChangeClearsAF(t *testing.T) {
	tp := newSessionPanel(t, defaultPanelOptions(), 94500)
	tp.Apply(AFObserved{Freq: 87600})
	tp.Apply(AFObserved{Freq: 88300})

	tp.Apply(FreqObserved{Freq: 98300})

	if got := tp.AFList(); len(got) != 0 {
		t.Fatalf("AF list after retune = %v, want empty", got)
	}
	if n := tp.surface.count("af_cleared"); n != 1 {
		t.Fatalf("af_cleared rendered %d times, want 1", n)
	}
	if tp.State().PrevFreq != 94500 {
		t.Fatalf("PrevFreq = %d, want 94500", tp.State().PrevFreq)
	}
}

func TestUpdateStereo_Accessibility(t *testing.T) {
	opts := defaultPanelOptions()
	opts.Accessibility = true
	tp := newTestPanel(t, opts)
	tp.Apply(SessionStarted{})

	u, ok := tp.surface.last("stereo")
	if !ok {
		t.Fatalf("expected a stereo update")
	}
	if got := segmentsText(u.(IndicatorUpdate).Segments); got != "  " {
		t.Fatalf("accessible mono indicator = %q, want blank", got)
	}

	tp.Apply(SignalObserved{Signal: 50, Stereo: true})
	u, _ = tp.surface.last("stereo")
	seg := u.(IndicatorUpdate).Segments[0]
	if seg.Text != "ST" || seg.Tier != TierStereo {
		t.Fatalf("stereo indicator = %#v", seg)
	}
}

func TestUpdateStereo_DimWhenMono(t *testing.T) {
	tp := newTestPanel(t, defaultPanelOptions())
	tp.Apply(SessionStarted{})

	u, _ := tp.surface.last("stereo")
	seg := u.(IndicatorUpdate).Segments[0]
	if seg.Text != "ST" || seg.Tier != TierDim {
		t.Fatalf("mono indicator = %#v, want dim ST", seg)
	}
}

func TestUpdateFlags_TPTAMSAndPTY(t *testing.T) {
	tp := newSessionPanel(t, defaultPanelOptions(), 94500)
	tp.Apply(RDSFlagsObserved{TP: 1, TA: 0, MS: 1, PTY: 10})

	u, _ := tp.surface.last("tp")
	if seg := u.(IndicatorUpdate).Segments[0]; seg.Text != "TP" || seg.Tier != TierNormal {
		t.Fatalf("TP = %#v", seg)
	}
	u, _ = tp.surface.last("ta")
	if seg := u.(IndicatorUpdate).Segments[0]; seg.Text != "TA" || seg.Tier != TierDim {
		t.Fatalf("TA = %#v", seg)
	}
	u, _ = tp.surface.last("ms")
	ms := u.(IndicatorUpdate).Segments
	if len(ms) != 2 || ms[0].Tier != TierNormal || ms[1].Tier != TierDim {
		t.Fatalf("MS music segments = %#v", ms)
	}
	u, _ = tp.surface.last("pty")
	if name := u.(PTYUpdate).Name; name != ptyName(PTYSetRDS, 10) {
		t.Fatalf("PTY name = %q", name)
	}
}

func TestUpdateECC_CountryFromPI(t *testing.T) {
	tp := newSessionPanel(t, defaultPanelOptions(), 94500)
	tp.Apply(PIObserved{PI: 0x3201})
	tp.Apply(ECCObserved{ECC: 0xE2})

	u, ok := tp.surface.last("ecc")
	if !ok {
		t.Fatalf("expected an ecc update")
	}
	if got := u.(ECCUpdate).Country; got != "PL" {
		t.Fatalf("country = %q, want PL", got)
	}
}

func TestUpdateSignal_PeakHold(t *testing.T) {
	tp := newSessionPanel(t, defaultPanelOptions(), 94500)

	tp.Apply(SignalObserved{Signal: 40})
	if n := tp.surface.count("signal"); n != 1 {
		t.Fatalf("first sample rendered %d times, want 1", n)
	}

	for i := 0; i < 3; i++ {
		tp.Apply(SignalObserved{Signal: 30})
	}
	if n := tp.surface.count("signal"); n != 1 {
		t.Fatalf("samples inside the hold window rendered: count=%d", n)
	}

	tp.Apply(SignalObserved{Signal: 20})
	u, _ := tp.surface.last("signal")
	sig := u.(SignalUpdate)
	if sig.Current != 30 || sig.Max != 40 {
		t.Fatalf("after refill: current=%d max=%d, want 30/40", sig.Current, sig.Max)
	}

	tp.Apply(SignalObserved{Signal: 60})
	u, _ = tp.surface.last("signal")
	if sig := u.(SignalUpdate); sig.Current != 60 {
		t.Fatalf("new peak should show at once, current=%d", sig.Current)
	}
}

func TestUpdateCCI_HeldBetweenRefreshes(t *testing.T) {
	tp := newSessionPanel(t, defaultPanelOptions(), 94500)

	for _, v := range []int{10, 40, 30, 20} {
		tp.Apply(InterferenceObserved{CCI: v, ACI: 5})
	}
	if n := tp.surface.count("cci"); n != 2 {
		t.Fatalf("cci renders = %d, want 2 (first sample and new peak)", n)
	}
	u, _ := tp.surface.last("cci")
	if cci := u.(InterferenceUpdate); cci.Level != 40 || cci.Fraction != 0.4 {
		t.Fatalf("cci = %#v, want level 40 fraction 0.4", cci)
	}

	tp.surface.reset()
	tp.Apply(InterferenceObserved{CCI: 4, ACI: 5})
	if n := tp.surface.count("cci"); n != 0 {
		t.Fatalf("sample inside the window rendered %d times", n)
	}

	tp.Apply(InterferenceObserved{CCI: 4, ACI: 5})
	u, ok := tp.surface.last("cci")
	if !ok {
		t.Fatalf("expected a cci update at the refresh point")
	}
	if cci := u.(InterferenceUpdate); cci.Level != 30 || cci.Fraction != 0.04 {
		t.Fatalf("cci after refill = %#v, want level 30 fraction 0.04", cci)
	}

	tp.Apply(InterferenceObserved{CCI: noData, ACI: 5})
	u, _ = tp.surface.last("cci")
	if !u.(InterferenceUpdate).Unknown {
		t.Fatalf("no-data sample should show unknown at once")
	}
}

func TestUpdateScan_RepeatIgnored(t *testing.T) {
	tp := newSessionPanel(t, defaultPanelOptions(), 94500)
	points := []ScanPoint{{Freq: 87500, Signal: 20}, {Freq: 87600, Signal: 35}}

	tp.Apply(ScanObserved{Points: points})
	tp.Apply(ScanObserved{Points: append([]ScanPoint(nil), points...)})
	if n := tp.surface.count("scan"); n != 1 {
		t.Fatalf("identical scans rendered %d times, want 1", n)
	}

	points[1].Signal = 36
	tp.Apply(ScanObserved{Points: points})
	if n := tp.surface.count("scan"); n != 2 {
		t.Fatalf("changed scan not rendered, count=%d", n)
	}
}

func TestSignalSegments_OffsetArrow(t *testing.T) {
	tests := []struct {
		mode   Mode
		unit   SignalUnit
		offset float64
		want   string
	}{
		{ModeFM, UnitDBf, 0, "↑"},
		{ModeFM, UnitDBf, 0.05, "↑"},
		{ModeFM, UnitDBf, 0.1, "↥"},
		{ModeFM, UnitDBm, 0.05, "↥"},
		{ModeFM, UnitDBuV, 0.05, "↥"},
		{ModeAM, UnitDBuV, 0.05, "↑"},
	}
	for _, tt := range tests {
		segs := signalSegments(tt.mode, tt.unit, tt.offset, 40, 30)
		if !strings.Contains(segs[0].Text, tt.want) {
			t.Fatalf("%v %s offset %v: first segment %q, want arrow %s", tt.mode, tt.unit, tt.offset, segs[0].Text, tt.want)
		}
	}
}

func TestUnauthorized_ShowsErrorDialog(t *testing.T) {
	tp := newSessionPanel(t, defaultPanelOptions(), 94500)
	tp.Apply(LinkUnauthorized{})

	if tp.State().SessionActive {
		t.Fatalf("session should end on unauthorized")
	}
	u, ok := tp.surface.last("dialog")
	if !ok || u.(DialogUpdate).Level != "error" {
		t.Fatalf("expected an error dialog, got %#v", u)
	}
}
