package main

import "github.com/brainemulation/reftab/internal/bib"

// curatedReferences are entries for sources the tables cite that the
// extraction pass never captured. Normalize appends any of these that
// the bibliography is still missing; existing IDs are left alone.
var curatedReferences = []bib.Entry{
	{
		ID:      "sobe_2025",
		Type:    "report",
		Title:   "State of Brain Emulation Report 2025",
		Authors: []bib.Author{{Family: "Zanichelli", Given: "N."}, {Family: "Schons", Given: "M."}},
		Issued:  &bib.Date{DateParts: [][]int{{2025}}},
		URL:     "https://brainemulation.org",
	},
	{
		ID:      "nvidia_h100_2024",
		Type:    "webpage",
		Title:   "NVIDIA H100 Tensor Core GPU",
		Authors: []bib.Author{{Literal: "NVIDIA"}},
		Issued:  &bib.Date{DateParts: [][]int{{2024}}},
		URL:     "https://www.nvidia.com/en-us/data-center/h100/",
	},
	{
		ID:      "aws_s3_pricing_2025",
		Type:    "webpage",
		Title:   "Amazon S3 Pricing",
		Authors: []bib.Author{{Literal: "Amazon Web Services"}},
		Issued:  &bib.Date{DateParts: [][]int{{2025}}},
		URL:     "https://aws.amazon.com/s3/pricing/",
	},
	{
		ID:      "wellcome_connectomics_2024",
		Type:    "webpage",
		Title:   "Wellcome Connectomics Initiative",
		Authors: []bib.Author{{Literal: "Wellcome Trust"}},
		Issued:  &bib.Date{DateParts: [][]int{{2024}}},
		URL:     "https://wellcome.org/what-we-do/our-work/wellcome-connectomics",
	},
	{
		ID:      "microns_2021",
		Type:    "article-journal",
		Title:   "Functional connectomics spanning multiple areas of mouse visual cortex",
		Authors: []bib.Author{{Literal: "MICrONS Consortium"}},
		Issued:  &bib.Date{DateParts: [][]int{{2021}}},
		DOI:     "10.1101/2021.07.28.454025",
		URL:     "https://www.microns-explorer.org/",
	},
	{
		ID:    "januszewski2018",
		Type:  "article-journal",
		Title: "High-precision automated reconstruction of neurons with flood-filling networks",
		Authors: []bib.Author{
			{Family: "Januszewski", Given: "Michał"},
			{Family: "Kornfeld", Given: "Jörgen"},
			{Family: "Li", Given: "Peter H."},
			{Family: "Pope", Given: "Art"},
			{Family: "Blakely", Given: "Tim"},
			{Family: "Lindsey", Given: "Larry"},
			{Family: "Maitin-Shepard", Given: "Jeremy"},
			{Family: "Tyka", Given: "Mike"},
			{Family: "Denk", Given: "Winfried"},
			{Family: "Jain", Given: "Viren"},
		},
		ContainerTitle: "Nature Methods",
		Issued:         &bib.Date{DateParts: [][]int{{2018}}},
		Volume:         "15",
		Page:           "605-610",
		DOI:            "10.1038/s41592-018-0049-4",
	},
	{
		ID:             "schwartz2018",
		Type:           "article-journal",
		Title:          "High-throughput, high-resolution neuroimaging with multibeam scanning electron microscopy",
		Authors:        []bib.Author{{Family: "Schwartz", Given: "A."}},
		ContainerTitle: "bioRxiv",
		Issued:         &bib.Date{DateParts: [][]int{{2018}}},
		DOI:            "10.1101/386250",
	},
	{
		ID:             "chen2020",
		Type:           "article-journal",
		Title:          "An interactive framework for whole-brain maps at cellular resolution",
		Authors:        []bib.Author{{Family: "Chen", Given: "X."}},
		ContainerTitle: "Nature Neuroscience",
		Issued:         &bib.Date{DateParts: [][]int{{2020}}},
		DOI:            "10.1038/s41593-020-0633-2",
	},
}
