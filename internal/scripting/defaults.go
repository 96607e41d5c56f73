package scripting

// Built-in content used when no scripts directory is present.

func defaultEvents() []StoryEvent {
	return []StoryEvent{
		{
			ID:       "abandoned_camp",
			Title:    "Заброшенный лагерь",
			Text:     "Вы наткнулись на заброшенный лагерь выживших. Обыскать?",
			GoodText: "В палатке нашлись припасы и канистра с заражённой водой.",
			BadText:  "Лагерь оказался ловушкой мародёров. Пришлось бежать, бросив часть добычи.",
			Bad:      BadEffect{Type: "infection", Amount: 100},
		},
		{
			ID:       "strange_merchant",
			Title:    "Странный торговец",
			Text:     "Из тумана выходит торговец в противогазе и предлагает обмен вслепую.",
			GoodText: "Обмен оказался выгодным: торговец недооценил свой товар.",
			BadText:  "Торговец исчез вместе с вашим оружием.",
			Bad:      BadEffect{Type: "slot", Slot: "weapon"},
		},
		{
			ID:       "radio_signal",
			Title:    "Радиосигнал",
			Text:     "Рация ловит слабый сигнал. Идти на источник?",
			GoodText: "Сигнал привёл к тайнику военных.",
			BadText:  "Это была приманка заражённых. Укус стоил вам здоровья и припасов.",
			Bad:      BadEffect{Type: "infection", Amount: 150},
		},
		{
			ID:       "collapsed_metro",
			Title:    "Обрушенное метро",
			Text:     "Тоннель метро частично обрушен, но сквозь завал виден свет.",
			GoodText: "За завалом оказался нетронутый склад станции.",
			BadText:  "Завал пришёл в движение. Шлем остался под обломками.",
			Bad:      BadEffect{Type: "slot", Slot: "helmet"},
		},
	}
}

func defaultScenarios() []DangerScenario {
	return []DangerScenario{
		{
			Name:  "Лаборатория «Крайм-Кор»",
			Intro: "Двери лаборатории захлопнулись за спиной. Где-то воет сирена.",
			Branches: []DangerBranch{
				{Steps: []DangerStep{
					{Prompt: "Коридор разветвляется. Куда?", Options: []string{"Налево, к виварию", "Направо, к серверной", "Прямо, в темноту"}},
					{Prompt: "Сзади слышны шаги. Действия?", Options: []string{"Спрятаться в шкафу", "Бежать", "Замереть"}},
					{Prompt: "Впереди аварийный выход, но он под током.", Options: []string{"Перерезать кабель", "Искать обход", "Прыгнуть"}},
				}},
				{Steps: []DangerStep{
					{Prompt: "Лифт или лестница?", Options: []string{"Лифт", "Лестница", "Вентиляция"}},
					{Prompt: "На этаже темно. Чем посветить?", Options: []string{"Зажигалкой", "Телефоном", "Идти на ощупь"}},
					{Prompt: "Дверь наружу заварена.", Options: []string{"Искать лом", "Выбить окно", "Звать на помощь"}},
				}},
			},
		},
		{
			Name:  "Завод «Химпром»",
			Intro: "Пол залит чем-то едким, дыхание перехватывает.",
			Branches: []DangerBranch{
				{Steps: []DangerStep{
					{Prompt: "Цистерны шипят. Как пройти цех?", Options: []string{"По мосткам", "Между цистерн", "Через подвал"}},
					{Prompt: "Мостки обрываются.", Options: []string{"Перепрыгнуть", "Спуститься по трубе", "Вернуться"}},
					{Prompt: "Выход завален бочками.", Options: []string{"Раскидать", "Поджечь", "Протиснуться"}},
				}},
				{Steps: []DangerStep{
					{Prompt: "Сигнализация сработала. Куда бежать?", Options: []string{"В раздевалку", "На крышу", "В цех"}},
					{Prompt: "Путь преграждает пар из трубы.", Options: []string{"Перекрыть вентиль", "Проползти снизу", "Пробежать"}},
					{Prompt: "Забор под напряжением.", Options: []string{"Подкоп", "Перекусить проволоку", "Перелезть"}},
				}},
			},
		},
	}
}
