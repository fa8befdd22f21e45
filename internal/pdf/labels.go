package pdf

// ItemLabels holds the item numbers that shift depending on whether the
// entrance examination block is rendered. The SSLC items and the admission
// quota item follow the entrance block, so their numbering moves together
// with it.
type ItemLabels struct {
	EntranceHeader   string // only meaningful when the block is rendered
	EntranceRegister string
	EntranceRank     string
	SSLCHeader       string
	SSLCBoard        string
	SSLCPercentage   string
	Quota            string
}

// itemLabels maps the entrance flag to the concrete item numbers. The two
// outcomes are mutually exclusive: every shifted label moves or none does.
func itemLabels(hasEntrance bool) ItemLabels {
	if hasEntrance {
		return ItemLabels{
			EntranceHeader:   "22",
			EntranceRegister: "22(a)",
			EntranceRank:     "22(b)",
			SSLCHeader:       "23",
			SSLCBoard:        "23(a)",
			SSLCPercentage:   "23(b)",
			Quota:            "24",
		}
	}
	return ItemLabels{
		SSLCHeader:     "22",
		SSLCBoard:      "22(a)",
		SSLCPercentage: "22(b)",
		Quota:          "23",
	}
}
