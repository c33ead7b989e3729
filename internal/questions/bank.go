package questions

// DefaultBank returns the built-in seven-question bank.
func DefaultBank() Bank {
	return Bank{
		{
			ID:          1,
			Text:        "When someone deeply wrongs you, what is your immediate internal reaction, and how do you eventually handle it?",
			Placeholder: "Be honest about your first instinct...",
			Options: []string{
				"I feel intense anger but eventually forgive for my own peace.",
				"I cut them off immediately; betrayal is unacceptable.",
				"I try to understand their perspective and seek reconciliation.",
				"I hold a grudge silently while maintaining a polite exterior.",
			},
		},
		{
			ID:          2,
			Text:        "If you could change one significant regret from your past, would you do it? Why or why not?",
			Placeholder: "Think about the consequences of changing who you are...",
			Options: []string{
				"Yes, I would undo the pain I caused others.",
				"No, my mistakes made me who I am today.",
				"Yes, I missed a great opportunity I want back.",
				"No, I believe in fate and that everything happens for a reason.",
			},
		},
		{
			ID:          3,
			Text:        "How do you determine if an action is 'good' or 'bad'? Is it the intent, or the outcome?",
			Placeholder: "Explain your moral compass...",
			Options: []string{
				"Intent matters most; accidents shouldn't be punished.",
				"Outcome is king; good intentions don't fix damage.",
				"It's a balance; both must be aligned for true goodness.",
				"Good and bad are subjective social constructs.",
			},
		},
		{
			ID:          4,
			Text:        "Imagine you have achieved everything you ever wanted, but you are completely alone. Is this success?",
			Placeholder: "Define what success means to you...",
			Options: []string{
				"No, success is meaningless without someone to share it with.",
				"Yes, personal achievement is the ultimate goal.",
				"It's a hollow victory, but still a victory.",
				"I would prefer a modest life full of love over lonely greatness.",
			},
		},
		{
			ID:          5,
			Text:        "What is more important to you: personal freedom or responsibility to your community?",
			Placeholder: "Where is the balance for you?",
			Options: []string{
				"Personal freedom; I must be true to myself first.",
				"Responsibility; we owe it to others to contribute.",
				"Freedom, as long as it doesn't harm others.",
				"Responsibility provides the structure for true freedom.",
			},
		},
		{
			ID:          6,
			Text:        "If you lost your job, your status, and your possessions tomorrow, who would you be?",
			Placeholder: "Describe your core self without labels...",
			Options: []string{
				"I would be a survivor, ready to rebuild.",
				"I would be lost; my achievements define me.",
				"I would be free; possessions are just a burden.",
				"I would still be a loving friend/partner/family member.",
			},
		},
		{
			ID:          7,
			Text:        "How do you cope with the realization that life is finite?",
			Placeholder: "Does it scare you, drive you, or comfort you?",
			Options: []string{
				"It drives me to make every moment count.",
				"It terrifies me, so I try not to think about it.",
				"It comforts me; eternity would be boring.",
				"I focus on leaving a legacy that outlasts me.",
			},
		},
	}
}
