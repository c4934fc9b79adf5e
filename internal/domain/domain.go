package domain

// KeyPrefix namespaces every Redis key written by this service.
const KeyPrefix = "carrec:"

// VehicleCollection is the FT index collection holding the vehicle catalog.
const VehicleCollection = "vehicles"

// DefaultVectorDim is the embedding dimensionality (text-embedding-3-small).
const DefaultVectorDim = 1536
