package langchain

import (
	"fmt"
	"strings"

	"fortune-backend/internal/bazi"
	"fortune-backend/internal/meihua"
)

// Prompt 一次解读请求
type Prompt struct {
	// Topic 用于日志与缓存键：bazi | divination
	Topic     string
	Content   string
	MaxTokens int
}

const markdownRequirement = `请用中文回答，语言要专业但通俗易懂。请使用Markdown格式来组织你的回答，包括：
- 使用 # ## ### 等标题层级
- 使用 - 或 * 创建无序列表
- 使用 1. 2. 3. 创建有序列表
- 使用 **文字** 或 *文字* 进行强调
- 每个段落之间空一行

请确保Markdown格式正确，以便于阅读和排版。`

// BaziPrompt 八字解读提示词
func BaziPrompt(chart bazi.Chart, maxTokens int) Prompt {
	content := fmt.Sprintf(`作为一位精通中国传统命理学的专业命理师，请对以下生辰八字进行详细解读：

八字：%s
性别：%s

请提供：
1. 八字基本分析（五行强弱、日主喜忌）
2. 性格特点分析
3. 事业财运分析
4. 健康状况分析
5. 婚姻家庭分析
6. 大运流年简析

%s`, chart.String(), chart.Gender.Label(), markdownRequirement)

	return Prompt{Topic: "bazi", Content: content, MaxTokens: maxTokens}
}

// DivinationPrompt 梅花易数解读提示词
func DivinationPrompt(h meihua.Hexagram, method meihua.Method, question string, maxTokens int) Prompt {
	question = strings.TrimSpace(question)
	if question == "" {
		question = "（未提供具体问题，请就近期整体运势解读）"
	}

	content := fmt.Sprintf(`作为一位精通梅花易数的专业占卜师，请对以下卦象进行详细解读：

卦象：%s
起卦方法：%s
问题：%s

请提供：
1. 卦象的基本含义
2. 对问题的具体解答
3. 吉凶指示和建议

%s`, h.String(), method.Label(), question, markdownRequirement)

	return Prompt{Topic: "divination", Content: content, MaxTokens: maxTokens}
}
