package resume

// SampleResume returns a fully populated resume for trying templates out.
func SampleResume() *Resume {
	return &Resume{
		TemplateName: DefaultTemplate,
		PersonalInfo: PersonalInfo{
			Name:     "John Doe",
			Title:    "Software Engineer",
			Phone:    "(555) 123-4567",
			Email:    "john.doe@example.com",
			GitHub:   "https://github.com/johndoe",
			Location: "San Francisco, CA",
			LinkedIn: "https://linkedin.com/in/johndoe",
			Website:  "https://johndoe.dev",
		},
		ProfessionalSummary: "Experienced software engineer with 5+ years of experience in full-stack development.",
		PageSize:            DefaultPageSize,
		WorkExperience: []WorkExperience{
			{
				Company:   "Tech Corp",
				Position:  "Senior Software Engineer",
				StartDate: "2020-01-01",
				EndDate:   "Present",
				Description: Bullets{
					"Led development of microservices architecture",
					"Mentored junior developers",
					"Improved system performance by 40%",
				},
			},
		},
		Education: []Education{
			{
				Institution: "University of Technology",
				Degree:      "Bachelor of Science in Computer Science",
				StartDate:   "2014-09-01",
				EndDate:     "2018-05-01",
			},
		},
		Skills: []string{"Python", "JavaScript", "React", "Node.js", "Docker", "AWS"},
		AcademicProjects: []AcademicProject{
			{
				Title:        "E-commerce Platform",
				Date:         "Spring 2018",
				Technologies: "React, Node.js, MongoDB",
				Description: Bullets{
					"Built full-stack e-commerce platform",
					"Implemented payment processing",
				},
				Links: map[string]string{
					"GitHub": "https://github.com/johndoe/ecommerce",
					"Demo":   "https://demo.example.com",
				},
			},
		},
		Certifications: []Certification{
			{
				Name:         "AWS Solutions Architect",
				Issuer:       "Amazon Web Services",
				Date:         "2021-03-15",
				CredentialID: "AWS-SAA-123456",
				URL:          "https://aws.amazon.com/verification",
				Description: Bullets{
					"Validated expertise in AWS cloud architecture",
					"Demonstrated proficiency in designing scalable systems",
				},
			},
		},
		Publications: []Publication{
			{
				Title:   "Microservices Best Practices",
				Authors: "Doe, J.",
				Journal: "Tech Weekly",
				Date:    "2022-06-01",
				URL:     "https://techweekly.com/microservices",
				Description: Bullets{
					"Explored patterns for microservices architecture",
					"Provided practical implementation guidelines",
				},
			},
		},
		Hobbies:   []string{"Photography", "Hiking", "Open Source Contribution", "Chess"},
		Languages: []string{"English", "Spanish", "German"},
		Referees: []Referee{
			{
				Name:         "Jane Smith",
				Position:     "Engineering Manager",
				Organization: "Tech Corp",
				Email:        "jane.smith@techcorp.com",
				Phone:        "(555) 987-6543",
				Relationship: "Direct Supervisor",
			},
		},
		CustomText: []CustomText{
			{
				Title:       "Design Philosophy",
				Description: "I believe great design should be both beautiful and functional. My approach combines aesthetic excellence with strategic thinking to create visual solutions that achieve business objectives.",
			},
		},
	}
}

// SampleCoverLetter returns a cover letter matching SampleResume.
func SampleCoverLetter() *CoverLetter {
	return &CoverLetter{
		TemplateName:      DefaultCoverTemplate,
		PageSize:          DefaultPageSize,
		Name:              "John Doe",
		Title:             "Software Engineer",
		Phone:             "(555) 123-4567",
		Email:             "john.doe@example.com",
		Location:          "San Francisco, CA",
		CompanyName:       "Acme Cloud",
		HiringManagerName: "Alex Morgan",
		Paragraph: []string{
			"I am writing to apply for the Senior Backend Engineer role at Acme Cloud. Over the past five years I have built and operated distributed services that handle millions of requests a day.",
			"At Tech Corp I led the move to a microservices architecture, mentored a team of four engineers and cut p99 latency by 40%. I enjoy turning vague requirements into reliable systems.",
			"I would welcome the chance to discuss how my experience can help Acme Cloud scale its platform. Thank you for your time and consideration.",
		},
	}
}
