// Package intent classifies queries into intent categories with regex rules.
package intent

// Category is one of the fixed intent classes.
type Category string

const (
	Informational   Category = "informational"
	Navigational    Category = "navigational"
	Transactional   Category = "transactional"
	Comparison      Category = "comparison"
	Troubleshooting Category = "troubleshooting"
	Emergency       Category = "emergency"
	General         Category = "general"
)

// Categories lists every category in evaluation order.
var Categories = []Category{
	Informational, Navigational, Transactional, Comparison, Troubleshooting, Emergency, General,
}

// Rule is the pattern list of one category. Patterns are matched
// case-insensitively against the raw query.
type Rule struct {
	Category Category
	Patterns []string
}

// DefaultRules is the bilingual rule table.
var DefaultRules = []Rule{
	{Informational, []string{
		`什么是|什么叫|何为|定义|概念`,
		`what\s+is|what\s+are|define|definition`,
		`如何理解|怎么理解|含义|意思`,
		`介绍|说明|解释|详情`,
		`原因|为什么|why|reason|cause`,
		`症状|表现|特征|signs|symptoms`,
	}},
	{Navigational, []string{
		`如何|怎么|怎样|方法|方式`,
		`how\s+to|how\s+can|ways\s+to|methods`,
		`缓解|治疗|处理|应对|解决`,
		`relief|treatment|manage|handle|solve`,
		`步骤|流程|过程|procedure|process`,
		`指南|指导|建议|guide|advice`,
	}},
	{Transactional, []string{
		`下载|获取|获得|download|get|obtain`,
		`购买|买|订购|buy|purchase|order`,
		`预约|约见|appointment|book|schedule`,
		`申请|注册|register|apply|sign\s+up`,
		`PDF|文件|资料|document|file`,
		`工具|清单|checklist|toolkit`,
	}},
	{Comparison, []string{
		`vs|versus|对比|比较|区别`,
		`compare|comparison|difference|different`,
		`哪个更好|哪种更|which\s+is\s+better|which\s+one`,
		`优缺点|利弊|pros\s+and\s+cons|advantages`,
		`相比|比起|compared\s+to|versus`,
		`选择|选哪个|choose|select|pick`,
	}},
	{Troubleshooting, []string{
		`问题|故障|错误|problem|issue|error`,
		`无效|不管用|没用|not\s+working|doesn't\s+work`,
		`失败|不成功|failed|unsuccessful`,
		`怎么办|如何处理|what\s+to\s+do|how\s+to\s+handle`,
		`解决|修复|fix|solve|resolve`,
		`仍然|依然|still|continue|persist`,
	}},
	{Emergency, []string{
		`急救|紧急|立即|urgent|emergency|immediate`,
		`严重|剧烈|intense|severe|extreme`,
		`无法|不能|can't|cannot|unable`,
		`急性|突然|sudden|acute|sharp`,
		`危险|危急|危害|danger|critical|risk`,
		`马上|立刻|now|right\s+away|immediately`,
	}},
	{General, []string{
		`痛经|经痛|月经|生理期|period|menstrual`,
		`疼痛|痛|疼|pain|ache|hurt`,
		`健康|保健|health|wellness`,
		`女性|妇女|women|female`,
		`医学|医疗|medical|healthcare`,
	}},
}
