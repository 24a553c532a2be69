package repository

// Table name constants.
const (
	tableSurveys            = "surveys"
	tableARUs               = "arus"
	tableMediaAssets        = "media_assets"
	tableAcousticDetections = "acoustic_detections"
	tableVisualDetections   = "visual_detections"
	tableWindows            = "calibration_windows"
)

// Insert batch size; keeps statements below SQLite's parameter limit.
const createBatchSize = 200
