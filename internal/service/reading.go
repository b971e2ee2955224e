package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"fortune-backend/internal/bazi"
	"fortune-backend/internal/cache"
	"fortune-backend/internal/langchain"
	"fortune-backend/internal/logger"
	"fortune-backend/internal/meihua"
	"fortune-backend/internal/model"
)

var (
	ErrInvalidBirthTime = errors.New("出生时间格式错误")
	ErrInvalidGender    = errors.New("性别参数错误")
	ErrInvalidMethod    = errors.New("起卦方法错误")
)

// Options Reader 依赖
type Options struct {
	Interpreter langchain.Interpreter
	Cache       cache.Provider // nil 表示不缓存
	CacheTTL    time.Duration
	Calculator  *bazi.Calculator // nil 使用内置修正表
	Location    *time.Location   // 不带时区的出生时间按此解析；起卦时间也换算到此时区
	Now         func() time.Time

	// Model 参与缓存键，切换模型后不复用旧解读
	Model               string
	BaziMaxTokens       int
	DivinationMaxTokens int
}

// Reader 排盘、起卦并请求解读
type Reader struct {
	calc        atomic.Pointer[bazi.Calculator]
	interpreter langchain.Interpreter
	cache       cache.Provider
	cacheTTL    time.Duration
	loc         *time.Location
	now         func() time.Time

	model               string
	baziMaxTokens       int
	divinationMaxTokens int
}

func NewReader(opt Options) *Reader {
	r := &Reader{
		interpreter:         opt.Interpreter,
		cache:               opt.Cache,
		cacheTTL:            opt.CacheTTL,
		loc:                 opt.Location,
		now:                 opt.Now,
		model:               opt.Model,
		baziMaxTokens:       opt.BaziMaxTokens,
		divinationMaxTokens: opt.DivinationMaxTokens,
	}
	if r.interpreter == nil {
		r.interpreter = langchain.InterpreterFunc(func(context.Context, langchain.Prompt) (string, error) {
			return "", langchain.ErrCredentialMissing
		})
	}
	if r.loc == nil {
		r.loc = time.Local
	}
	if r.now == nil {
		r.now = time.Now
	}
	if r.baziMaxTokens <= 0 {
		r.baziMaxTokens = 2000
	}
	if r.divinationMaxTokens <= 0 {
		r.divinationMaxTokens = 1000
	}
	calc := opt.Calculator
	if calc == nil {
		calc = bazi.NewCalculator(bazi.DefaultCorrections())
	}
	r.calc.Store(calc)
	return r
}

// SetCalculator 替换修正表，用于热加载
func (r *Reader) SetCalculator(c *bazi.Calculator) {
	if c != nil {
		r.calc.Store(c)
	}
}

var birthLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006/01/02 15:04",
	"2006-01-02",
}

// ParseBirthTime RFC3339 保留自带时区，其余格式按服务时区解析
func (r *Reader) ParseBirthTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: 为空", ErrInvalidBirthTime)
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	for _, layout := range birthLayouts {
		if t, err := time.ParseInLocation(layout, s, r.loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidBirthTime, s)
}

// Chart 只排盘，不请求解读
func (r *Reader) Chart(in model.BirthInput) (bazi.Chart, time.Time, error) {
	birth, err := r.ParseBirthTime(in.BirthTime)
	if err != nil {
		return bazi.Chart{}, time.Time{}, err
	}
	gender := bazi.Male
	if strings.TrimSpace(in.Gender) != "" {
		g, ok := bazi.ParseGender(in.Gender)
		if !ok {
			return bazi.Chart{}, time.Time{}, fmt.Errorf("%w: %q", ErrInvalidGender, in.Gender)
		}
		gender = g
	}
	return r.calc.Load().Compute(birth, gender), birth, nil
}

// ComputeBazi 排盘；interpret 为 true 时同步请求解读
func (r *Reader) ComputeBazi(ctx context.Context, in model.BirthInput, interpret bool) (*model.BaziReading, error) {
	chart, birth, err := r.Chart(in)
	if err != nil {
		return nil, err
	}
	out := &model.BaziReading{Chart: ChartView(chart, birth)}
	if interpret {
		out.Interpretation = r.interpret(ctx, langchain.BaziPrompt(chart, r.baziMaxTokens))
	}
	return out, nil
}

// Cast 起卦；方法为空或 auto 时按问题内容选择
func (r *Reader) Cast(in model.DivinationInput) (meihua.Hexagram, meihua.Method, time.Time, error) {
	m, ok := meihua.ParseMethod(in.Method)
	if !ok {
		return meihua.Hexagram{}, "", time.Time{}, fmt.Errorf("%w: %q", ErrInvalidMethod, in.Method)
	}
	now := r.now().In(r.loc)
	resolved := meihua.Resolve(m, in.Question)
	h := meihua.ComputeHexagram(resolved, meihua.Payload{Now: now, Text: in.Question})
	return h, resolved, now, nil
}

// Divine 起卦；interpret 为 true 时同步请求解读
func (r *Reader) Divine(ctx context.Context, in model.DivinationInput, interpret bool) (*model.DivinationReading, error) {
	h, method, castAt, err := r.Cast(in)
	if err != nil {
		return nil, err
	}
	out := &model.DivinationReading{
		Question: in.Question,
		Hexagram: HexagramView(h, method, castAt),
	}
	if interpret {
		out.Interpretation = r.interpretDivination(ctx, h, method, in.Question)
	}
	return out, nil
}

func (r *Reader) interpretDivination(ctx context.Context, h meihua.Hexagram, method meihua.Method, question string) *model.Interpretation {
	return r.interpret(ctx, langchain.DivinationPrompt(h, method, question, r.divinationMaxTokens))
}

// interpret 解读失败只体现在返回值里，不影响排盘结果
func (r *Reader) interpret(ctx context.Context, p langchain.Prompt) *model.Interpretation {
	log := logger.C(ctx, "Reading")
	key := cache.Key(p.Topic, r.model, p.Content)

	if r.cache != nil {
		var cached model.Interpretation
		if err := r.cache.Get(ctx, key, &cached); err == nil && cached.Text != "" {
			cached.Cached = true
			log.Debug().Str("topic", p.Topic).Msg("解读命中缓存")
			return &cached
		} else if err != nil && !errors.Is(err, cache.ErrMiss) {
			log.Warn().Err(err).Msg("读取缓存失败")
		}
	}

	text, err := r.interpreter.Interpret(ctx, p)
	if err != nil {
		log.Warn().Err(err).Str("topic", p.Topic).Str("kind", string(langchain.KindOf(err))).Msg("解读失败")
		return &model.Interpretation{
			Error:     langchain.UserMessage(err),
			ErrorKind: errorKind(err),
		}
	}

	out := &model.Interpretation{Text: text}
	if r.cache != nil {
		if err := r.cache.Set(ctx, key, out, r.cacheTTL); err != nil {
			log.Warn().Err(err).Msg("写入缓存失败")
		}
	}
	return out
}

func errorKind(err error) string {
	if k := langchain.KindOf(err); k != "" {
		return string(k)
	}
	return string(langchain.KindNetworkFailure)
}

// ChartView 转换为响应结构
func ChartView(c bazi.Chart, birth time.Time) model.ChartView {
	v := model.ChartView{
		Year:        pillarView(c.Year),
		Month:       pillarView(c.Month),
		Day:         pillarView(c.Day),
		FullBazi:    c.String(),
		Gender:      string(c.Gender),
		GenderLabel: c.Gender.Label(),
		Corrected:   c.Corrected,
		HourUnknown: c.HourUnknown,
		BirthTime:   birth,
	}
	if !c.HourUnknown {
		v.Hour = pillarView(c.Hour)
	}
	return v
}

func pillarView(p bazi.Pillar) model.PillarView {
	return model.PillarView{Stem: p.Stem.String(), Branch: p.Branch.String(), Text: p.String()}
}

// HexagramView 转换为响应结构
func HexagramView(h meihua.Hexagram, m meihua.Method, castAt time.Time) model.HexagramView {
	return model.HexagramView{
		Ordinal:      h.Ordinal(),
		Name:         h.Name(),
		Upper:        h.Upper.String(),
		Lower:        h.Lower.String(),
		ChangingLine: h.ChangingLine,
		Text:         h.String(),
		Method:       string(m),
		MethodLabel:  m.Label(),
		CastAt:       castAt,
	}
}
