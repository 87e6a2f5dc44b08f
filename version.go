package screengraph

// Version is the library version reported by the CLI.
const Version = "0.4.0"
