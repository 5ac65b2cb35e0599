package synonym

// DefaultGroups is the built-in bilingual medical vocabulary.
var DefaultGroups = []Group{
	{MainTerm: "痛经", Synonyms: []string{"经痛", "月经疼痛", "生理痛", "dysmenorrhea", "menstrual pain", "period pain"}, Related: []string{"子宫收缩", "盆腔疼痛", "下腹痛"}, Category: "症状", Confidence: 1.0},
	{MainTerm: "疼痛", Synonyms: []string{"痛", "疼", "pain", "ache", "discomfort", "hurt"}, Related: []string{"不适", "酸痛", "刺痛", "钝痛"}, Category: "症状", Confidence: 0.9},
	{MainTerm: "缓解", Synonyms: []string{"减轻", "舒缓", "缓和", "改善", "relief", "ease", "alleviate"}, Related: []string{"治疗", "康复", "恢复"}, Category: "治疗", Confidence: 0.95},
	{MainTerm: "治疗", Synonyms: []string{"疗法", "医治", "治愈", "treatment", "therapy", "cure"}, Related: []string{"康复", "调理", "护理"}, Category: "治疗", Confidence: 0.9},
	{MainTerm: "药物", Synonyms: []string{"药品", "药剂", "医药", "medication", "medicine", "drug", "pharmaceutical"}, Related: []string{"处方", "剂量", "副作用"}, Category: "药物", Confidence: 0.9},
	{MainTerm: "布洛芬", Synonyms: []string{"ibuprofen", "advil", "motrin"}, Related: []string{"止痛药", "消炎药", "NSAID"}, Category: "药物", Confidence: 0.85},
	{MainTerm: "腹部", Synonyms: []string{"肚子", "腹腔", "小腹", "abdomen", "belly", "stomach"}, Related: []string{"下腹", "盆腔", "腰部"}, Category: "解剖", Confidence: 0.8},
	{MainTerm: "子宫", Synonyms: []string{"宫腔", "uterus", "womb"}, Related: []string{"子宫内膜", "宫颈", "卵巢"}, Category: "解剖", Confidence: 0.9},
	{MainTerm: "月经", Synonyms: []string{"例假", "生理期", "大姨妈", "menstruation", "period", "menses"}, Related: []string{"经期", "月经周期", "排卵"}, Category: "生理", Confidence: 0.95},
	{MainTerm: "经期", Synonyms: []string{"月经期", "生理期", "menstrual period"}, Related: []string{"月经周期", "排卵期", "黄体期"}, Category: "时间", Confidence: 0.9},
	{MainTerm: "严重", Synonyms: []string{"重度", "剧烈", "强烈", "severe", "intense", "extreme", "acute"}, Related: []string{"急性", "危险", "紧急"}, Category: "程度", Confidence: 0.8},
	{MainTerm: "轻微", Synonyms: []string{"轻度", "微弱", "mild", "slight", "minor", "gentle"}, Related: []string{"可控", "轻松", "舒适"}, Category: "程度", Confidence: 0.8},
	{MainTerm: "热敷", Synonyms: []string{"热水袋", "加热垫", "热疗", "heat therapy", "heating pad", "hot compress"}, Related: []string{"温敷", "热水浴", "桑拿"}, Category: "自然疗法", Confidence: 0.85},
	{MainTerm: "按摩", Synonyms: []string{"推拿", "揉捏", "massage", "rubbing"}, Related: []string{"穴位按压", "指压", "理疗"}, Category: "自然疗法", Confidence: 0.8},
	{MainTerm: "运动", Synonyms: []string{"锻炼", "体育", "健身", "exercise", "workout", "physical activity"}, Related: []string{"瑜伽", "步行", "游泳"}, Category: "生活方式", Confidence: 0.85},
	{MainTerm: "瑜伽", Synonyms: []string{"yoga", "伸展运动"}, Related: []string{"冥想", "呼吸练习", "柔韧性"}, Category: "运动", Confidence: 0.8},
	{MainTerm: "情绪", Synonyms: []string{"心情", "感情", "情感", "mood", "emotion", "feeling"}, Related: []string{"心理", "精神", "态度"}, Category: "心理", Confidence: 0.7},
	{MainTerm: "压力", Synonyms: []string{"紧张", "焦虑", "应激", "stress", "anxiety", "tension"}, Related: []string{"抑郁", "烦躁", "不安"}, Category: "心理", Confidence: 0.8},
	{MainTerm: "饮食", Synonyms: []string{"膳食", "营养", "食谱", "diet", "nutrition", "eating"}, Related: []string{"食物", "营养素", "维生素"}, Category: "生活方式", Confidence: 0.85},
	{MainTerm: "睡眠", Synonyms: []string{"休息", "睡觉", "入睡", "sleep", "rest", "slumber"}, Related: []string{"失眠", "疲劳", "恢复"}, Category: "生活方式", Confidence: 0.8},
}
