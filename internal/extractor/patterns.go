package extractor

import "regexp"

// 标题/正文启发式扫描使用的全部模式
// 这些启发式天然模糊，阈值是可调策略而不是精确语义
var (
	// 元数据行不能作为标题
	metadataLinePattern = regexp.MustCompile(`(?i)^(page|issn|doi|volume|received|accepted|published)`)
	pureDigitsPattern   = regexp.MustCompile(`^\d+$`)

	// 作者行
	fullNamePattern    = regexp.MustCompile(`^[A-Z][a-z]+ [A-Z][a-z]+`)
	initialNamePattern = regexp.MustCompile(`[A-Z]\. [A-Z][a-z]+`)
	institutionPattern = regexp.MustCompile(`Department|University|School`)

	// 出版信息
	doiPattern       = regexp.MustCompile(`(?i)DOI:\s*(https?://dx\.doi\.org/)?(\S+)`)
	doiOrgPattern    = regexp.MustCompile(`(?i)doi\.org/(\S+)`)
	receivedPattern  = regexp.MustCompile(`(?i)Received:\s*([^;\n]+)`)
	acceptedPattern  = regexp.MustCompile(`(?i)Accepted:\s*([^;\n]+)`)
	publishedPattern = regexp.MustCompile(`(?i)Published:\s*([^;\n]+)`)

	// 摘要与关键词
	abstractPattern     = regexp.MustCompile(`(?i)\bABSTRACT\b`)
	afterAbstractEnd    = regexp.MustCompile(`(?i)\b(keywords?|introduction|1\.?\s+introduction)`)
	keywordsLinePattern = regexp.MustCompile(`(?i)\b(keywords?|key\s*words?):\s*([^\n\r]+)`)

	// 摘要和关键词区不属于正文章节
	frontMatterHeading = regexp.MustCompile(`(?i)^(abstract|keywords?|key\s*words?)\b`)

	// 表格类行不能作为标题候选
	tabularNumberPattern = regexp.MustCompile(`^\s*\d+\.\d+\s+\d+\.\d+`)

	// 标题候选
	knownSectionPattern = regexp.MustCompile(`(?i)^(introduction|methodology|methods|results|discussion|conclusion|literature\s*review|background|related\s*work|experimental|analysis|findings|limitations|future\s*work)`)
	numberedHeading     = regexp.MustCompile(`^\d+\.?\s+[A-Z]`)
	allCapsHeading      = regexp.MustCompile(`^[A-Z\s]{3,50}$`)

	// 进入参考文献模式
	referencesPattern = regexp.MustCompile(`(?i)^(references|bibliography|works?\s*cited)`)
)
