package lab

// StarterFiles seeds every new lab with a minimal React app matching the
// lab image's dev server layout.
func StarterFiles() map[string]string {
	return map[string]string{
		"src/App.jsx": "export default function App() { return <h1>Hello CodePlay Lab</h1>; }",
		"src/main.jsx": "import React from 'react';\n" +
			"import ReactDOM from 'react-dom/client';\n" +
			"import App from './App';\n" +
			"ReactDOM.createRoot(document.getElementById('root')).render(<App />);\n",
	}
}
