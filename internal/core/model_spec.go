package core

// ModelSpec names a resolvable model artifact: a logical name (used as
// the cache-directory key), the URL it is fetched from when absent
// locally, and the filename it is stored under once resolved.
type ModelSpec struct {
	Name     string
	URL      string
	Filename string
}

// Known model artifacts consumed by the detection and audio subsystems.
// Names, URLs, and the tracker's lost-track budget mirror the values
// pinned by the original implementation this system was ported from.
var (
	YOLOPoseModel = ModelSpec{
		Name:     "yolo11n-pose-widerface",
		URL:      "https://github.com/faceguard-ml/models/releases/download/v1/yolo11n-pose_widerface.onnx",
		Filename: "yolo11n-pose_widerface.onnx",
	}

	// FaceEmbeddingModel is not consumed by the blur pipeline itself; it
	// is retained as a resolvable artifact for identity-aware track
	// grouping across separate jobs, an extension point the original
	// implementation exposed via embedding_face_grouper.rs /
	// histogram_face_grouper.rs but which this pipeline does not wire.
	FaceEmbeddingModel = ModelSpec{
		Name:     "w600k-r50-embedding",
		URL:      "https://github.com/faceguard-ml/models/releases/download/v1/w600k_r50.onnx",
		Filename: "w600k_r50.onnx",
	}

	WhisperASRModel = ModelSpec{
		Name:     "whisper-tiny-en",
		URL:      "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-tiny.en.bin",
		Filename: "ggml-tiny.en.bin",
	}
)

// TrackerMaxLost is the number of consecutive frames a track may go
// undetected before the tracker discards it (~1s at 30 FPS).
const TrackerMaxLost = 30

// WhisperSampleRate is the sample rate the ASR backend expects.
const WhisperSampleRate = 16000
