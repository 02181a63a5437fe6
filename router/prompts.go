package router

const questionInstruction = `You are a helpful, friendly and knowledgeable assistant.
Answer the user's question clearly and accurately, while keeping a warm and approachable tone.
If the question is complex, break it down into easy-to-understand parts.
Do not overcomplicate things: keep the response informative, but make the user feel comfortable and understood.

User's question: {{.Subject}}`

const generateCodeInstruction = `You are a skilled programmer. Write a complete and working piece of code that solves the following request: "{{.Subject}}"

- If the user specified the programming language, use that.
- If not, choose the language best suited for the task.
- Keep the code clean, efficient and readable.
- Do not add explanations or comments unless asked.`

const editCodeInstruction = `Edit the code so that it satisfies the user's request: {{.Subject}}
Explain what the problem was and show each change with a comment in the new code.
For example:
User_code -> prnit("Hello World!!!")
AI_edited_code -> print("Hello World!!!") # You misspelled the word <print>`

const generateTextInstruction = `Generate a text that satisfies the user's request: {{.Subject}}
Write in the language the user asks for. If no language is specified, respond in the language of the request.`

const editTextInstruction = `Edit the text so that it satisfies the user's request: {{.Subject}}
Explain what the problem was and annotate each change inline.
For example:
User_text -> Hi, my name are Maria.
AI_edited_text -> Hi, my name is Maria. (You've made a grammatical mistake.)
Or:
User_text -> Hi, my name is Maria, I'm fron London.
AI_edited_text -> Hi, my name is Maria, I'm from London. (You've made a spelling mistake.)`

const saveCodeInstruction = `Choose the file the following code must be saved in, by language:
Code in c++ => output.cpp
Code in python => output.py
Code in javascript => output.js
Code in java => output.java
Code in go => output.go
Code in php => output.php
Code in ruby => output.rb
Code in c# => output.cs
Code in rust => output.rs

Reply with "FILENAME: <name>" on the first line, followed by the code exactly as given, without markdown fences.

Code:
{{.Subject}}`
