package domain

// KeyPrefix namespaces every key datadesk writes to the shared store.
const KeyPrefix = "datadesk:"
