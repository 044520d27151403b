package resume

const skillsPrompt = `You are a resume parser extracting a list of professional skills.

Return the output in exactly this format (a list literal):

["python", "sql", "data analysis"]

Rules:
- Output MUST be a valid list of strings.
- Do NOT wrap the answer in markdown.
- Do NOT add explanations, comments, or variable names.
- Just output the list literal.

Resume:
`

const profilePrompt = `Extract a detailed resume profile in this JSON format:

{
  "name": "Full Name",
  "totalYearsExperience": 4.5,
  "totalYearsEducation": 6,
  "latestExperienceTitle": "...",
  "latestEducationLevel": "Masters",
  "experienceByDomain": { "Data Science": 2, "Software": 3 },
  "pastEmployers": ["Company A", "Company B"],
  "education": [...],
  "experience": [...],
  "industriesWorkedIn": ["..."],
  "publications": 2,
  "patents": 0
}

Only return valid JSON. Do not add markdown or any extra formatting.

Resume:
`
