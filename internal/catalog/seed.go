package catalog

// DefaultResources is the catalog content seeded into an empty database.
func DefaultResources() []Resource {
	return []Resource{
		{
			Kind:          KindTender,
			Identifier:    "T-2024-001",
			Title:         "Supply of Industrial Boilers",
			Category:      "Equipment",
			Status:        StatusOpen,
			PublishedDate: "2024-01-15",
			ClosingDate:   "2024-02-28",
			Location:      "Main Plant",
			FileSize:      "2.4 MB",
			DocumentURL:   "/static/documents/tenders/T-2024-001.pdf",
			Description:   "Design, supply and commissioning of two 20 t/h steam boilers.",
			Requirements: []string{
				"Valid trade license",
				"Minimum 5 years of boiler manufacturing experience",
				"ISO 9001 certification",
			},
		},
		{
			Kind:          KindTender,
			Identifier:    "T-2024-002",
			Title:         "Annual Maintenance of Conveyor Systems",
			Category:      "Services",
			Status:        StatusOpen,
			PublishedDate: "2024-02-01",
			ClosingDate:   "2024-03-15",
			Location:      "Packaging Unit",
			FileSize:      "1.1 MB",
			DocumentURL:   "/static/documents/tenders/T-2024-002.pdf",
			Description:   "Preventive and corrective maintenance of belt conveyors for twelve months.",
			Requirements: []string{
				"Registered maintenance contractor",
				"Two similar contracts in the last three years",
			},
		},
		{
			Kind:          KindTender,
			Identifier:    "T-2024-003",
			Title:         "Construction of Raw Material Warehouse",
			Category:      "Construction",
			Status:        StatusOpen,
			PublishedDate: "2024-03-10",
			ClosingDate:   "2024-04-30",
			Location:      "North Site",
			FileSize:      "5.8 MB",
			DocumentURL:   "/static/documents/tenders/T-2024-003.pdf",
			Description:   "Civil works for a 4,000 m² steel structure warehouse.",
			Requirements: []string{
				"Class A construction license",
				"Audited financial statements",
			},
		},
		{
			Kind:          KindTender,
			Identifier:    "T-2023-014",
			Title:         "Supply of Safety Equipment",
			Category:      "Equipment",
			Status:        StatusClosed,
			PublishedDate: "2023-09-05",
			ClosingDate:   "2023-10-05",
			Location:      "All Sites",
			FileSize:      "0.9 MB",
			DocumentURL:   "/static/documents/tenders/T-2023-014.pdf",
			Description:   "Helmets, harnesses and protective clothing for plant staff.",
			Requirements:  []string{"Certified PPE supplier"},
		},
		{
			Kind:          KindContract,
			Identifier:    "Framework Agreement for Spare Parts",
			Title:         "Framework Agreement for Spare Parts",
			Category:      "Procurement",
			Status:        StatusAvailable,
			PublishedDate: "2024-01-20",
			FileSize:      "640 KB",
			DocumentURL:   "/static/documents/contracts/framework-spare-parts.pdf",
			Description:   "Standard terms for the supply of mechanical spare parts.",
		},
		{
			Kind:          KindContract,
			Identifier:    "Supplier Code of Conduct",
			Title:         "Supplier Code of Conduct",
			Category:      "Compliance",
			Status:        StatusAvailable,
			PublishedDate: "2023-06-12",
			FileSize:      "310 KB",
			DocumentURL:   "/static/documents/contracts/supplier-code-of-conduct.pdf",
			Description:   "Ethical, environmental and safety requirements for suppliers.",
		},
		{
			Kind:          KindContract,
			Identifier:    "Power Purchase Agreement",
			Title:         "Power Purchase Agreement",
			Category:      "Energy",
			Status:        StatusRestricted,
			PublishedDate: "2022-11-30",
			FileSize:      "1.7 MB",
			DocumentURL:   "/static/documents/contracts/power-purchase-agreement.pdf",
			Description:   "Long term electricity supply agreement. Summary only.",
		},
	}
}
