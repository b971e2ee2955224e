package model

import "time"

// BirthInput 八字请求
type BirthInput struct {
	// BirthTime 支持 RFC3339 或 "2006-01-02 15:04"，不带时区时按服务时区解析
	BirthTime string `json:"birth_time" binding:"required"`
	Gender    string `json:"gender"` // male, female, 男, 女
	RequestID string `json:"request_id,omitempty"`
}

// DivinationInput 起卦请求
type DivinationInput struct {
	Question  string `json:"question"`
	Method    string `json:"method"` // auto, time, number, name
	RequestID string `json:"request_id,omitempty"`
}

// PillarView 单柱
type PillarView struct {
	Stem   string `json:"stem"`
	Branch string `json:"branch"`
	Text   string `json:"text"`
}

// ChartView 四柱
type ChartView struct {
	Year        PillarView `json:"year"`
	Month       PillarView `json:"month"`
	Day         PillarView `json:"day"`
	Hour        PillarView `json:"hour"`
	FullBazi    string     `json:"full_bazi"` // 四柱以空格分隔
	Gender      string     `json:"gender"`
	GenderLabel string     `json:"gender_label"`
	Corrected   bool       `json:"corrected"` // 命中修正表
	HourUnknown bool       `json:"hour_unknown,omitempty"`
	BirthTime   time.Time  `json:"birth_time"`
}

// HexagramView 卦象
type HexagramView struct {
	Ordinal      int       `json:"ordinal"` // 1-64
	Name         string    `json:"name"`    // 如 "乾震"
	Upper        string    `json:"upper"`
	Lower        string    `json:"lower"`
	ChangingLine int       `json:"changing_line"` // 1-6
	Text         string    `json:"text"`          // 第58卦 乾震卦 变爻: 第1爻
	Method       string    `json:"method"`        // 实际使用的方法
	MethodLabel  string    `json:"method_label"`
	CastAt       time.Time `json:"cast_at"`
}

// Interpretation 解读结果；失败时 Text 为空，Error 为提示文案
type Interpretation struct {
	Text      string `json:"text,omitempty"`
	Error     string `json:"error,omitempty"`
	ErrorKind string `json:"error_kind,omitempty"`
	Cached    bool   `json:"cached,omitempty"`
}

// BaziReading 八字结果
type BaziReading struct {
	Chart          ChartView       `json:"chart"`
	Interpretation *Interpretation `json:"interpretation,omitempty"`
}

// DivinationReading 起卦结果
type DivinationReading struct {
	Question       string          `json:"question"`
	Hexagram       HexagramView    `json:"hexagram"`
	Interpretation *Interpretation `json:"interpretation,omitempty"`
}
