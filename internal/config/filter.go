package config

// DefaultFilter — встроенные словари тематического фильтра.
func DefaultFilter() Filter {
	return Filter{
		AIKeywords: []string{
			"人工智能", "大模型", "大语言模型", "智能体", "机器学习", "深度学习", "神经网络",
			"生成式", "多模态", "aigc", "具身智能", "文生图", "文生视频", "推理模型", "算力",
			"openai", "chatgpt", "gpt-", "sora", "anthropic", "claude", "gemini", "deepmind",
			"deepseek", "llama", "mistral", "qwen", "通义", "文心", "豆包", "kimi", "月之暗面",
			"智谱", "混元", "copilot", "midjourney", "stable diffusion", "hugging face",
			"huggingface", "langchain", "ollama", "nvidia", "英伟达",
		},
		AISignalPattern: `\b(ai|a\.i\.|agi|genai|llms?|gpts?|rag|rlhf|nlp|agents?|agentic|chatbots?|transformers?|diffusion|neural|inference|fine-?tun(e|ed|ing)|embeddings?|prompts?)\b`,
		TechKeywords: []string{
			"机器人", "robot", "芯片", "半导体", "chip", "semiconductor", "gpu", "自动驾驶",
			"autonomous", "量子", "quantum", "开源", "open source", "open-source", "github",
			"编程", "programming", "developer", "开发者", "算法", "algorithm", "数据中心",
			"data center", "云计算", "cloud", "科技", "软件", "software", "linux", "rust",
			"golang", "python", "javascript", "database", "数据库", "操作系统", "kubernetes",
		},
		CommerceNoise: []string{
			"优惠", "折扣", "促销", "秒杀", "团购", "带货", "直播间", "双十一", "618", "满减",
			"包邮", "券后", "限时特价", "coupon", "discount", "black friday", "promo code",
		},
		GenericNoise: []string{
			"娱乐", "明星", "八卦", "综艺", "彩票", "星座", "运势", "足球", "篮球", "电视剧",
			"celebrity", "horoscope", "lottery",
		},
		TophubAllow: []string{
			"科技", "技术", "互联网", "数码", "人工智能", "ai", "it之家", "36氪", "虎嗅", "少数派",
			"掘金", "github", "hacker news", "开发者", "infoq", "csdn", "极客", "机器之心",
			"量子位", "v2ex", "爱范儿", "雷锋网", "钛媒体", "品玩",
		},
		TophubBlock: []string{
			"娱乐", "体育", "影视", "电影", "游戏", "音乐", "星座", "美食", "旅游", "时尚",
			"情感", "汽车", "房产", "股票", "财经",
		},
	}
}
