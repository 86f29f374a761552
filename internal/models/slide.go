package models

type Slide struct {
	Index     int    `json:"index"`
	Content   string `json:"content"`
	Narration string `json:"narration,omitempty"`
}

type Segment struct {
	SlideIndex int     `json:"slide_index"`
	ImagePath  string  `json:"image_path"`
	AudioPath  string  `json:"audio_path,omitempty"`
	Duration   float64 `json:"duration"`
}
