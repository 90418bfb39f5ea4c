// Package assets provides the stylesheets and page templates used to export
// standards as HTML and PDF.
//
// # Loaders
//
//	AssetLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - built-in assets compiled into the binary
//	    ├── FilesystemLoader  - assets from a directory on disk
//	    └── AssetResolver     - custom directory first, embedded as fallback
//
// # Directory Structure
//
//	{basePath}/
//	├── styles/
//	│   └── {name}.css       # e.g. default.css, print.css
//	└── templates/
//	    └── {name}.html      # standard.html, checklist.html
//
// Templates are html/template sources. Asset names may not contain path
// separators or dots, and the filesystem loader refuses paths that resolve
// outside its base directory.
package assets
