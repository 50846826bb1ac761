package mission

import (
	"math"
	"path/filepath"
	"testing"
)

func TestPoseCodecRoundTrip(t *testing.T) {
	want := PoseSample{
		Timestamp:    1234.5,
		Longitude:    151.215738,
		Latitude:     -33.858231,
		Depth:        12.4,
		Heading:      271.25,
		Pitch:        -3.5,
		Roll:         1.125,
		AltitudeUsed: 2.8,
	}

	got, err := DecodePose(want.Timestamp, EncodePose(want))
	if err != nil {
		t.Fatalf("DecodePose: %v", err)
	}
	if got != want {
		t.Errorf("round trip: got %+v, want %+v", got, want)
	}
}

func TestDecodePose_WrongSize(t *testing.T) {
	if _, err := DecodePose(0, make([]byte, 10)); err == nil {
		t.Fatal("short payload must fail")
	}
}

func TestRawImageCodec_Validation(t *testing.T) {
	cases := []struct {
		name string
		img  RawImage
	}{
		{"zero dimensions", RawImage{Width: 0, Height: 2, Format: PixelMono8, Pix: nil}},
		{"bad format", RawImage{Width: 1, Height: 1, Format: 99, Pix: []byte{0}}},
		{"pixel size mismatch", RawImage{Width: 2, Height: 2, Format: PixelRGB8, Pix: []byte{1, 2, 3}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := EncodeRawImage(tc.img); err == nil {
				t.Error("encode must reject invalid raw image")
			}
		})
	}
}

func TestTopicMap(t *testing.T) {
	m, err := NewTopicMap("/pose", map[Role]Camera{
		"down":    {Topic: "/cam/down", Encoding: EncodingRaw},
		"forward": {Topic: "/cam/fwd", Encoding: EncodingCompressed},
	})
	if err != nil {
		t.Fatalf("NewTopicMap: %v", err)
	}

	if kind, _, _, ok := m.Resolve("/pose"); !ok || kind != KindPose {
		t.Errorf("pose topic: got kind=%v ok=%v", kind, ok)
	}
	if kind, role, enc, ok := m.Resolve("/cam/down"); !ok || kind != KindImage || role != "down" || enc != EncodingRaw {
		t.Errorf("camera topic: got kind=%v role=%q enc=%q ok=%v", kind, role, enc, ok)
	}
	if _, _, _, ok := m.Resolve("/dvl"); ok {
		t.Error("unmapped topic must not resolve")
	}

	if roles := m.Roles(); len(roles) != 2 || roles[0] != "down" || roles[1] != "forward" {
		t.Errorf("roles: got %v, want sorted [down forward]", roles)
	}
}

func TestTopicMap_Invalid(t *testing.T) {
	cases := []struct {
		name    string
		pose    string
		cameras map[Role]Camera
	}{
		{"empty pose topic", "", nil},
		{"camera without topic", "/pose", map[Role]Camera{"down": {Encoding: EncodingRaw}}},
		{"camera on pose topic", "/pose", map[Role]Camera{"down": {Topic: "/pose", Encoding: EncodingRaw}}},
		{"duplicate topic", "/pose", map[Role]Camera{
			"down":    {Topic: "/cam", Encoding: EncodingRaw},
			"forward": {Topic: "/cam", Encoding: EncodingRaw},
		}},
		{"bad encoding", "/pose", map[Role]Camera{"down": {Topic: "/cam", Encoding: "mp4"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewTopicMap(tc.pose, tc.cameras); err == nil {
				t.Error("want error")
			}
		})
	}
}

func TestStoreSourceRoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "dive_042.db")

	store := NewStore(dbPath)
	if _, err := store.CreateMission("dive_042", "auv-1"); err != nil {
		t.Fatalf("CreateMission: %v", err)
	}

	pose := PoseSample{Timestamp: 2, Longitude: 151.21, Latitude: -33.86, Depth: 3, Heading: 90}
	framePayload, err := EncodeRawImage(RawImage{Width: 1, Height: 1, Format: PixelMono8, Pix: []byte{128}})
	if err != nil {
		t.Fatalf("EncodeRawImage: %v", err)
	}

	messages := []Message{
		{Topic: "/dvl", TimestampNs: 1_000_000_000, Payload: []byte("ignored")},
		{Topic: "/pose", TimestampNs: 2_000_000_000, Payload: EncodePose(pose)},
		{Topic: "/cam/down", TimestampNs: 2_500_000_000, Payload: framePayload},
	}
	if err := store.BatchInsertMessages(messages); err != nil {
		t.Fatalf("BatchInsertMessages: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("closing store: %v", err)
	}

	topics, err := NewTopicMap("/pose", map[Role]Camera{"down": {Topic: "/cam/down", Encoding: EncodingRaw}})
	if err != nil {
		t.Fatalf("NewTopicMap: %v", err)
	}

	src, err := OpenSource(dbPath, topics)
	if err != nil {
		t.Fatalf("OpenSource: %v", err)
	}
	defer src.Close()

	logTopics, err := src.Topics()
	if err != nil {
		t.Fatalf("Topics: %v", err)
	}
	if len(logTopics) != 3 {
		t.Errorf("topics: got %v, want 3 distinct", logTopics)
	}

	var records []Record
	for src.Next() {
		records = append(records, src.Record())
	}
	if err := src.Err(); err != nil {
		t.Fatalf("iterating: %v", err)
	}

	// The /dvl message is unmapped and skipped; pose precedes the frame
	// in timestamp order.
	if len(records) != 2 {
		t.Fatalf("records: got %d, want 2", len(records))
	}
	if records[0].Kind != KindPose || records[0].Pose.Heading != 90 || records[0].Pose.Timestamp != 2 {
		t.Errorf("pose record: got %+v", records[0].Pose)
	}
	if records[1].Kind != KindImage || records[1].Image.Role != "down" {
		t.Fatalf("image record: got %+v", records[1].Image)
	}
	if math.Abs(records[1].Image.Timestamp-2.5) > 1e-9 {
		t.Errorf("image timestamp: got %f, want 2.5", records[1].Image.Timestamp)
	}
}
