package database

type comunaSemilla struct {
	nombre  string
	barrios []string
}

// Comunas and barrios of Medellín offered by the registration form.
var comunasSemilla = []comunaSemilla{
	{"Comuna 1 - Popular", []string{"Popular", "Santo Domingo Savio", "Granizal", "Moscú No. 1", "Villa Guadalupe"}},
	{"Comuna 2 - Santa Cruz", []string{"Santa Cruz", "La Francia", "Berlín", "San Pedro", "La Isla"}},
	{"Comuna 3 - Manrique", []string{"Manrique Central No. 1", "El Pomar", "La Salle", "Versalles", "Campo Valdés No. 2"}},
	{"Comuna 4 - Aranjuez", []string{"Aranjuez", "San Isidro", "Palermo", "Bermejal-Los Álamos", "Miranda"}},
	{"Comuna 5 - Castilla", []string{"Castilla", "Tricentenario", "La Paralela", "Las Brisas", "Moravia"}},
	{"Comuna 6 - Doce de Octubre", []string{"Doce de Octubre No. 1", "Pedregal", "La Esperanza", "Progreso", "Kennedy"}},
	{"Comuna 7 - Robledo", []string{"Robledo", "La Pola", "El Diamante", "Aures No. 1", "Pajarito"}},
	{"Comuna 8 - Villa Hermosa", []string{"Villa Hermosa", "San Antonio", "Enciso", "Sucre", "La Ladera"}},
	{"Comuna 9 - Buenos Aires", []string{"Buenos Aires", "Caicedo", "La Milagrosa", "El Salvador", "Las Lomas"}},
	{"Comuna 10 - La Candelaria", []string{"La Candelaria", "Prado", "Estación Villa", "San Benito", "Corpus Christi"}},
	{"Comuna 11 - Laureles-Estadio", []string{"Laureles", "Estadio", "Conquistadores", "Carlos E. Restrepo", "Bolivariana"}},
	{"Comuna 12 - La América", []string{"La América", "Ferrini", "Calasanz", "San Javier", "Santa Lucía"}},
	{"Comuna 13 - San Javier", []string{"San Javier", "La Loma", "El Salado", "Blanquizal", "Eduardo Santos"}},
	{"Comuna 14 - El Poblado", []string{"El Poblado", "Castropol", "Manila", "Patio Bonito", "El Tesoro"}},
	{"Comuna 15 - Guayabal", []string{"Guayabal", "La Colina", "Santa Fe", "San Rafael", "Cristo Rey"}},
	{"Comuna 16 - Belén", []string{"Belén", "Fátima", "Rosales", "Las Playas", "La Mota"}},
	{"Comuna 50 - Altavista", []string{"Altavista", "La Loma del Indio", "San José de la Montaña", "El Corazón", "Aguas Frías"}},
	{"Comuna 60 - San Antonio de Prado", []string{"San Antonio de Prado", "La Verde", "El Salado", "San José", "La Tablaza"}},
	{"Comuna 70 - San Cristóbal", []string{"San Cristóbal", "La Cuchilla", "El Llano", "La Palma", "El Picacho"}},
	{"Comuna 80 - Palmitas", []string{"Palmitas", "La Aldea", "La Sucia", "La Frisolera", "La Potrera"}},
	{"Comuna 90 - Santa Elena", []string{"Santa Elena", "El Plan", "El Cerro", "El Llano", "El Rosario"}},
}

var nacionalidadesSemilla = []string{
	"Colombiana",
	"Venezolana",
	"Ecuatoriana",
	"Peruana",
	"Boliviana",
	"Chilena",
	"Argentina",
	"Brasileña",
	"Panameña",
	"Mexicana",
	"Cubana",
	"Dominicana",
	"Estadounidense",
	"Española",
	"Otra",
}
