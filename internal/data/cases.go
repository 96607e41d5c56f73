package data

// CaseType identifies a loot crate kind.
type CaseType string

const (
	CaseFreeGift  CaseType = "free_gift"
	CaseInvite    CaseType = "invite"
	CaseInfection CaseType = "infection"
	CaseSign      CaseType = "sign"
	CaseBasic     CaseType = "basic"
	CaseLegend    CaseType = "legend"
)

// Currency a case is priced in.
type Currency string

const (
	CurrencyFree       Currency = "free"
	CurrencyInfection  Currency = "infection"
	CurrencyCrimecoins Currency = "crimecoins"
	CurrencyInvites    Currency = "invites"
)

// CaseDef describes one crate: price, currency and display strings.
type CaseDef struct {
	Type         CaseType
	Title        string
	Description  string
	Cost         int
	Currency     Currency
	IncludeSigns bool
	UniformRoll  bool // sign and legend cases roll uniformly, not by weight
}

// Cases lists every crate in menu order.
var Cases = []CaseDef{
	{
		Type:        CaseFreeGift,
		Title:       "Бесплатный кейс",
		Description: "Раз в сутки, за подписку на канал.",
		Cost:        0,
		Currency:    CurrencyFree,
	},
	{
		Type:        CaseInvite,
		Title:       "Кейс за приглашение",
		Description: "Выдаётся за каждого приглашённого выжившего.",
		Cost:        1,
		Currency:    CurrencyInvites,
	},
	{
		Type:        CaseInfection,
		Title:       "Заражённый кейс",
		Description: "Обычный кейс за заражение.",
		Cost:        500,
		Currency:    CurrencyInfection,
	},
	{
		Type:        CaseBasic,
		Title:       "Базовый кейс",
		Description: "Улучшенный пул предметов.",
		Cost:        1500,
		Currency:    CurrencyInfection,
	},
	{
		Type:         CaseSign,
		Title:        "Кейс знаков",
		Description:  "Только знаки. Шансы равные.",
		Cost:         5000,
		Currency:     CurrencyInfection,
		IncludeSigns: true,
		UniformRoll:  true,
	},
	{
		Type:        CaseLegend,
		Title:       "Легендарный кейс",
		Description: "Лучшие предметы. Шансы равные.",
		Cost:        10000,
		Currency:    CurrencyInfection,
		UniformRoll: true,
	},
}

// CaseByType returns the crate definition, or nil for unknown types.
func CaseByType(ct CaseType) *CaseDef {
	for i := range Cases {
		if Cases[i].Type == ct {
			return &Cases[i]
		}
	}
	return nil
}
